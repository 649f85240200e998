package model

import "time"

// Exchange is one completed question/answer round, kept as an audit log.
// Sessions themselves live only in the session store.
type Exchange struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:64;not null;index" json:"session_id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:longtext;not null" json:"answer"`
	Filenames string    `gorm:"type:text" json:"filenames"`
	Degraded  bool      `gorm:"not null;default:false" json:"degraded"`
	CreatedAt time.Time `json:"created_at"`
}

func (Exchange) TableName() string {
	return "qa_exchanges"
}
