package accounts

// Package accounts is the local account store boundary of the logon daemon.
//
// The reconciliation engine only sees the Store interface (lookup, create,
// set flags, set password). Two implementations exist:
//
//   FileStore - edits /etc/passwd, /etc/shadow and /etc/group directly with
//               safe parsing and atomic rewrites (files usually mounted
//               under /host).
//   CmdStore  - shells out to useradd/usermod/chage/chpasswd for hosts where
//               editing the files directly is not wanted.
