package model

// UserCollection is the gateway collection holding all registered accounts.
const UserCollection = "users"

// Identity is the authenticated author snapshot stamped onto every Post and
// Comment at creation time.
type Identity struct {
	Uid   string
	Email string
}

// User is a registered account document. PasswordHash never leaves the auth
// package.
type User struct {
	Id           string `firestore:"-"`
	Email        string `firestore:"email"`
	PasswordHash string `firestore:"passwordHash"`
}
