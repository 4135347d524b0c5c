package hostfs

// Package hostfs provides safe access helpers for the account database files
// the logon daemon edits.
//
// Fixed contract:
//   HostRoot = /host
//
// Expected mounts (examples):
//   /etc/passwd  -> /host/etc/passwd
//   /etc/shadow  -> /host/etc/shadow
//   /etc/group   -> /host/etc/group
//
// Running directly on the host (no container) is supported by pointing the
// account store at the real /etc paths instead of using Path().
