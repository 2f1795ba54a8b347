package models

// User is an account row. Accounts are created by the auth service;
// this service only reads them.
type User struct {
	ID    int    `db:"id" json:"id"`
	Login string `db:"login" json:"login"`
}
