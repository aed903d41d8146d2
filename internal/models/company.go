package models

import (
	"fmt"
	"time"
)

type CompanyStatus string

const (
	StatusPending  CompanyStatus = "pending"
	StatusApproved CompanyStatus = "approved"
	StatusRejected CompanyStatus = "rejected"
)

var CompanyStatuses = []CompanyStatus{StatusPending, StatusApproved, StatusRejected}

func ParseCompanyStatus(s string) (CompanyStatus, error) {
	switch st := CompanyStatus(s); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	default:
		return "", fmt.Errorf("unknown company status %q", s)
	}
}

// CanTransition: из pending можно только в approved или rejected,
// approved и rejected для интерфейса конечные.
func CanTransition(from, to CompanyStatus) bool {
	if from != StatusPending {
		return false
	}
	return to == StatusApproved || to == StatusRejected
}

type Region struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Service struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Company struct {
	ID            int           `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Status        CompanyStatus `json:"status"`
	UserID        *int          `json:"user_id,omitempty"`
	OwnerUsername string        `json:"user_username,omitempty"`
	Region        *Region       `json:"region"`
	Services      []Service     `json:"services"`
	CreatedAt     *time.Time    `json:"created_at,omitempty"`
}

func (c Company) RegionID() int {
	if c.Region == nil {
		return 0
	}
	return c.Region.ID
}

func (c Company) ServiceIDs() []int {
	ids := make([]int, 0, len(c.Services))
	for _, s := range c.Services {
		ids = append(ids, s.ID)
	}
	return ids
}
