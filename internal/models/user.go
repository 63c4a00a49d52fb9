package models

// User is the owner record that transactions and feedback point at.
// Credentials live with the authentication service, not here.
type User struct {
	Base
	Email        string        `gorm:"uniqueIndex;not null" json:"email"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Transactions []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
}
