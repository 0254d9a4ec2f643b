package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/grievease/petition-client-go/internal/model"
)

// ListParams narrows the public petition listing.
type ListParams struct {
	Search string
	SortBy string
	Skip   int
	Limit  int
}

// PublicPetitions lists the public browse feed. The bearer token is
// optional on this endpoint.
func (c *Client) PublicPetitions(ctx context.Context, params ListParams) ([]model.Petition, error) {
	q := url.Values{}
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.SortBy != "" {
		q.Set("sort_by", params.SortBy)
	}
	if params.Skip > 0 {
		q.Set("skip", strconv.Itoa(params.Skip))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}

	rawURL := c.url("/public/petitions")
	if len(q) > 0 {
		rawURL += "?" + q.Encode()
	}

	var petitions []model.Petition
	if err := c.getJSON(ctx, rawURL, &petitions); err != nil {
		return nil, err
	}
	return petitions, nil
}

// MyPetitions lists the signed-in citizen's own petitions.
func (c *Client) MyPetitions(ctx context.Context) ([]model.Petition, error) {
	var petitions []model.Petition
	if err := c.getJSON(ctx, c.url("/petitions/my"), &petitions); err != nil {
		return nil, err
	}
	return petitions, nil
}

// Petition fetches one petition by id.
func (c *Client) Petition(ctx context.Context, id int64) (*model.Petition, error) {
	var petition model.Petition
	if err := c.getJSON(ctx, c.url(fmt.Sprintf("/petitions/%d", id)), &petition); err != nil {
		return nil, err
	}
	return &petition, nil
}

// PetitionUpdates lists the audit trail of status transitions and
// officer comments for a petition.
func (c *Client) PetitionUpdates(ctx context.Context, id int64) ([]model.PetitionUpdate, error) {
	var updates []model.PetitionUpdate
	if err := c.getJSON(ctx, c.url(fmt.Sprintf("/petitions/%d/updates", id)), &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SubmitParams carries a new petition.
type SubmitParams struct {
	Title            string
	ShortDescription string
	Description      string
	Location         string
	Proofs           []ProofFile
}

type submitResponse struct {
	Message    string `json:"message"`
	PetitionID int64  `json:"petition_id"`
}

// SubmitPetition files a new grievance with optional evidence.
func (c *Client) SubmitPetition(ctx context.Context, params SubmitParams) (int64, error) {
	fields := map[string]string{
		"title":             params.Title,
		"short_description": params.ShortDescription,
		"description":       params.Description,
	}
	if params.Location != "" {
		fields["location"] = params.Location
	}

	var resp submitResponse
	if err := c.doMultipart(ctx, http.MethodPost, c.url("/petition/submit"), fields, nil, params.Proofs, &resp); err != nil {
		return 0, err
	}
	return resp.PetitionID, nil
}

// EditParams carries a petition edit: updated text fields plus the
// attachment reconciliation lists (files kept, files removed, files
// newly uploaded).
type EditParams struct {
	Title            string
	ShortDescription string
	Description      string
	Location         string
	ExistingFiles    []string
	RemovedFiles     []string
	Proofs           []ProofFile
}

// EditPetition updates an owned petition in place.
func (c *Client) EditPetition(ctx context.Context, id int64, params EditParams) error {
	fields := map[string]string{
		"title":             params.Title,
		"short_description": params.ShortDescription,
		"description":       params.Description,
	}
	if params.Location != "" {
		fields["location"] = params.Location
	}
	repeated := map[string][]string{
		"existing_files": params.ExistingFiles,
		"removed_files":  params.RemovedFiles,
	}
	return c.doMultipart(ctx, http.MethodPut, c.url(fmt.Sprintf("/petitions/%d/edit", id)), fields, repeated, params.Proofs, nil)
}
