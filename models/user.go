package models

// User is the seeded admin credential row. Sign-in goes through Google, so
// nothing reads PasswordHash today.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string `json:"username" gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string `json:"-" gorm:"type:text;not null"`
}
