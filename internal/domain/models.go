// Package domain defines the persistence models for the document archive.
// These types are mapped with GORM and form the core data layer of the bot.
package domain

import "time"

// Document describes one file submitted through the messaging channel. The
// file content itself stays hosted by the transport; only metadata is kept.
//
// Fields:
//   - ID: opaque file identifier assigned by the source system at submission
//     time. Immutable primary key; a second submission with the same ID is a
//     no-op (see repo.InsertDocument).
//   - Name: original filename, non-empty.
//   - ReceivedAt: ingestion timestamp (set by the service, not the sender).
//   - OriginMessageID / OriginChatID: the inbound message and conversation
//     that produced the record; search replies are threaded back to them.
//   - Note: optional caption attached at submission time; may be empty.
//
// Rows are immutable once created. There is no update or delete path.
type Document struct {
	ID              string    `json:"id"                gorm:"column:file_id;type:TEXT NOT NULL;primaryKey"`
	Name            string    `json:"name"              gorm:"type:TEXT NOT NULL"`
	ReceivedAt      time.Time `json:"received_at"       gorm:"type:DATETIME NOT NULL;index:idx_docs_received"`
	OriginMessageID int64     `json:"origin_message_id" gorm:"type:INTEGER NOT NULL"`
	OriginChatID    int64     `json:"origin_chat_id"    gorm:"type:INTEGER NOT NULL"`
	Note            string    `json:"note"              gorm:"type:TEXT NOT NULL;default:''"`
}

// TableName returns the database table name for Document.
func (Document) TableName() string { return "documents" }

// HasNote reports whether a non-empty note was attached at submission time.
func (d Document) HasNote() bool { return d.Note != "" }
