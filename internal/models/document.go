package models

import "time"

// DocumentKind distinguishes generated commercial documents.
type DocumentKind string

const (
	DocumentProposal DocumentKind = "proposal"
	DocumentContract DocumentKind = "contract"
)

// Document is a generated PDF tied to an opportunity.
type Document struct {
	ID            int64        `json:"id"`
	OpportunityID int64        `json:"opportunity_id"`
	Kind          DocumentKind `json:"kind"`
	FilePath      string       `json:"file_path"`
	CreatedBy     int64        `json:"created_by"`
	CreatedAt     time.Time    `json:"created_at"`
}
