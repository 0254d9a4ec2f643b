package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	apperrors "github.com/grievease/petition-client-go/internal/errors"
	"github.com/grievease/petition-client-go/internal/model"
)

// AdminPetitions lists the full admin collection, optionally filtered
// by status.
func (c *Client) AdminPetitions(ctx context.Context, status model.PetitionStatus) ([]model.Petition, error) {
	rawURL := c.url("/admin/petitions")
	if status != "" {
		q := url.Values{}
		q.Set("status", string(status))
		rawURL += "?" + q.Encode()
	}

	var petitions []model.Petition
	if err := c.getJSON(ctx, rawURL, &petitions); err != nil {
		return nil, err
	}
	return petitions, nil
}

// AdminPetition fetches a single petition from the admin surface. The
// backend exposes no single-item admin endpoint, so the collection is
// filtered here; the interface hides that transport detail.
func (c *Client) AdminPetition(ctx context.Context, id int64) (*model.Petition, error) {
	petitions, err := c.AdminPetitions(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range petitions {
		if petitions[i].PetitionID == id {
			return &petitions[i], nil
		}
	}
	return nil, apperrors.NotFound("Petition")
}

// VerifyUpdate submits a proposed status-update comment and evidence to
// the AI plausibility check. It never mutates the petition.
func (c *Client) VerifyUpdate(ctx context.Context, id int64, comment string, proofs []ProofFile) (*model.Verdict, error) {
	fields := map[string]string{"admin_comment": comment}

	var verdict model.Verdict
	rawURL := c.url(fmt.Sprintf("/admin/petitions/%d/verify-update", id))
	if err := c.doMultipart(ctx, http.MethodPost, rawURL, fields, nil, proofs, &verdict); err != nil {
		return nil, err
	}
	return &verdict, nil
}

// UpdateStatus commits a status change with the officer's comment and
// evidence. Callers go through the verification gate first.
func (c *Client) UpdateStatus(ctx context.Context, id int64, status model.PetitionStatus, comment string, proofs []ProofFile) error {
	fields := map[string]string{
		"status":        string(status),
		"admin_comment": comment,
	}
	rawURL := c.url(fmt.Sprintf("/admin/petitions/%d/status", id))
	return c.doMultipart(ctx, http.MethodPut, rawURL, fields, nil, proofs, nil)
}

// Statistics is the admin dashboard summary.
type Statistics struct {
	PetitionCounts struct {
		Pending    int `json:"pending"`
		InProgress int `json:"in_progress"`
		Resolved   int `json:"resolved"`
		Rejected   int `json:"rejected"`
		Total      int `json:"total"`
	} `json:"petition_counts"`
	UserCounts struct {
		TotalUsers    int `json:"total_users"`
		TotalOfficers int `json:"total_officers"`
	} `json:"user_counts"`
	RecentActivity struct {
		RecentPetitions int `json:"recent_petitions"`
	} `json:"recent_activity"`
}

// AdminStatistics fetches the dashboard summary counts.
func (c *Client) AdminStatistics(ctx context.Context) (*Statistics, error) {
	var stats Statistics
	if err := c.getJSON(ctx, c.url("/admin/statistics"), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Analytics is the dashboard breakdown by category, department, and
// status.
type Analytics struct {
	CategoryDistribution   map[string]int `json:"category_distribution"`
	DepartmentDistribution map[string]int `json:"department_distribution"`
	StatusDistribution     map[string]int `json:"status_distribution"`
}

// AdminAnalytics fetches the distribution breakdowns.
func (c *Client) AdminAnalytics(ctx context.Context) (*Analytics, error) {
	var analytics Analytics
	if err := c.getJSON(ctx, c.url("/admin/analytics"), &analytics); err != nil {
		return nil, err
	}
	return &analytics, nil
}
