// Package cli provides the interactive chattypatty command-line client.
//
// The App wires the identity store, the peer directory and the session
// runner to a line-oriented REPL. On start it makes sure a profile exists
// (asking for a username on first run) and asks the runner to connect. The
// REPL itself never touches the network: connects, lookups and probes are
// handed to background goroutines and their outcomes are printed as they
// arrive.
//
// Commands
//
//	whoami              show the local profile
//	setup <name> [ip]   create or replace the local profile
//	peers [query]       list known peers, optionally filtered
//	select <n>          pick a peer from the last listing
//	add <name>          add a peer to the directory
//	refresh             reload the directory from disk
//	lookup [name]       ask the server for a peer's address
//	status              show the session state and who is online
//	connect             (re)connect to the rendezvous server
//	disconnect          close the session
//	probe               check that the server accepts connections
//	help, exit
package cli
