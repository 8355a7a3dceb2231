// Package reconcile implements the reconciliation engine: it maps local
// product folders to remote catalog listings, persists those associations
// durably beside the folders they describe, detects staleness between a
// packaged artifact and its last-uploaded state, and falls back to
// interactive fuzzy matching when no deterministic mapping exists.
//
// The engine is host-agnostic: interactive decisions go through the Chooser
// and Confirmer strategy interfaces, so a CLI prompt, a GUI dialog, or a
// scripted test double can all drive it.
package reconcile

import (
	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/dkstudio/shopsync/internal/catalog"
	"github.com/dkstudio/shopsync/internal/etsy"
)

// Association is the persisted record mapping one local product folder to a
// remote listing. It lives in a sidecar file keyed by the folder's own
// path. EtsyListingID stays empty until the folder is resolved; LastUpload
// is the watermark written only after a confirmed successful upload.
type Association struct {
	ProductName   string    `json:"product_name"`
	EtsyListingID string    `json:"etsy_listing_id,omitempty"`
	LastUpload    *utc.Time `json:"last_upload,omitempty"`
}

// Candidate is one remote listing offered for interactive resolution.
type Candidate struct {
	ListingID string
	Title     string
	Score     float64
}

// Chooser supplies the human decision when no deterministic mapping exists:
// pick one of the ranked candidates, or none. Returning ok=false marks the
// folder skipped and mutates nothing.
type Chooser interface {
	Choose(productName string, candidates []Candidate) (choice Candidate, ok bool, err error)
}

// Confirmer supplies yes/no decisions for staleness and redundancy
// warnings. Declining is a normal early exit, never an error.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Outcome is the terminal state of resolving one folder.
type Outcome int

// Terminal states per folder.
const (
	// Skipped means no mapping was made and nothing was persisted.
	Skipped Outcome = iota
	// Mapped means the folder now has a persisted listing association.
	Mapped
)

// maxCandidates bounds how many ranked listings are offered for one choice.
const maxCandidates = 5

// Engine reconciles a workspace of product folders against the cached
// remote catalog and drives uploads through the API client.
type Engine struct {
	catalog   *catalog.Store
	client    *etsy.Client
	shopID    string
	chooser   Chooser
	confirmer Confirmer
	logger    zerolog.Logger
}

// New creates an engine. The chooser and confirmer come from the host
// environment; tests supply scripted doubles.
func New(cat *catalog.Store, client *etsy.Client, shopID string, chooser Chooser, confirmer Confirmer, logger zerolog.Logger) *Engine {
	return &Engine{
		catalog:   cat,
		client:    client,
		shopID:    shopID,
		chooser:   chooser,
		confirmer: confirmer,
		logger:    logger,
	}
}
