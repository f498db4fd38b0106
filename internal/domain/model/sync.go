package model

import "time"

type Branch struct {
	Company    string `json:"company,omitempty"`
	BranchName string `json:"branchName"`
	BranchID   string `json:"branchId"`
}

// BranchSummary is the fetch_efris_branches reply.
type BranchSummary struct {
	Success  bool     `json:"success"`
	Mapped   []Branch `json:"mapped"`
	NotFound []Branch `json:"not_found"`
	Error    string   `json:"error,omitempty"`
}

type ItemSyncRequest struct {
	CompanyName string `json:"company_name" validate:"required"`
	PageSize    int    `json:"page_size" validate:"omitempty,min=1,max=99"`
	ChunkSize   int    `json:"chunk_size" validate:"omitempty,min=1"`
}

// ItemSyncJob is published once the ERP accepted an item sync.
type ItemSyncJob struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	PageSize    int       `json:"page_size"`
	ChunkSize   int       `json:"chunk_size"`
	Status      string    `json:"status"`
	RequestedAt time.Time `json:"requested_at"`
}
