// Package peers persists the peer directory. Two backends implement
// Repository: a JSON array file compatible with all_users.json, and a SQLite
// table managed by goose migrations. Both replace the whole list in one
// all-or-nothing step and return records in insertion order.
package peers
