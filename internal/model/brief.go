package model

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Brief statuses, derived from the lifecycle timestamps.
const (
	BriefStatusDraft     = "draft"
	BriefStatusLive      = "live"
	BriefStatusClosed    = "closed"
	BriefStatusWithdrawn = "withdrawn"
)

// Lot slugs.
const (
	LotDigitalOutcome       = "digital-outcome"
	LotDigitalProfessionals = "digital-professionals"
	LotSpecialist           = "specialist"
	LotRFX                  = "rfx"
	LotATM                  = "atm"
	LotTraining             = "training2"
)

const FrameworkStatusLive = "live"

// Framework is a procurement framework and the lots it offers.
type Framework struct {
	ID     int64    `json:"id"`
	Slug   string   `json:"slug"`
	Name   string   `json:"name"`
	Status string   `json:"status"`
	Lots   []string `json:"lots"`
}

// Brief is a buyer's procurement request.
type Brief struct {
	ID              int64          `json:"id"`
	FrameworkSlug   string         `json:"frameworkSlug"`
	FrameworkStatus string         `json:"frameworkStatus"`
	LotSlug         string         `json:"lotSlug"`
	Data            map[string]any `json:"data"`
	UserIDs         []int64        `json:"users,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	PublishedAt     *time.Time     `json:"publishedAt,omitempty"`
	ClosedAt        *time.Time     `json:"closedAt,omitempty"`
	WithdrawnAt     *time.Time     `json:"withdrawnAt,omitempty"`
}

// StatusAt returns the lifecycle status of the brief at t.
func (b *Brief) StatusAt(t time.Time) string {
	switch {
	case b.WithdrawnAt != nil:
		return BriefStatusWithdrawn
	case b.PublishedAt == nil:
		return BriefStatusDraft
	case b.ClosedAt != nil && !b.ClosedAt.After(t):
		return BriefStatusClosed
	default:
		return BriefStatusLive
	}
}

// HasUser reports whether the user is one of the brief's buyers.
func (b *Brief) HasUser(userID int64) bool {
	for _, id := range b.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsSpecialist reports whether the lot allows several candidates per supplier.
func (b *Brief) IsSpecialist() bool {
	return b.LotSlug == LotDigitalProfessionals || b.LotSlug == LotSpecialist
}

func (b *Brief) str(key string) string {
	if b.Data == nil {
		return ""
	}
	switch v := b.Data[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func (b *Brief) Title() string             { return b.str("title") }
func (b *Brief) InternalReference() string { return b.str("internalReference") }
func (b *Brief) OpenTo() string            { return b.str("openTo") }
func (b *Brief) SellerSelector() string    { return b.str("sellerSelector") }
func (b *Brief) SellerEmail() string       { return strings.ToLower(b.str("sellerEmail")) }

// SellerCategory returns the domain id the brief is scoped to, or 0.
func (b *Brief) SellerCategory() int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(b.str("sellerCategory")), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// MaxRate returns the maximum day rate, or 0 when not set.
func (b *Brief) MaxRate() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(b.str("maxRate")), 64)
	if err != nil {
		return 0
	}
	return f
}

// InvitedSellerCodes returns the supplier codes listed under data.sellers.
func (b *Brief) InvitedSellerCodes() []int64 {
	out := make([]int64, 0)
	sellers, _ := b.Data["sellers"].(map[string]any)
	for k := range sellers {
		if code, err := strconv.ParseInt(k, 10, 64); err == nil {
			out = append(out, code)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsInvited reports whether the supplier code is one of the invited sellers.
func (b *Brief) IsInvited(code int64) bool {
	for _, c := range b.InvitedSellerCodes() {
		if c == code {
			return true
		}
	}
	return false
}

// SellerEmailList returns the lower-cased addresses of data.sellerEmailList.
func (b *Brief) SellerEmailList() []string {
	out := make([]string, 0)
	list, _ := b.Data["sellerEmailList"].([]any)
	for _, v := range list {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, strings.ToLower(strings.TrimSpace(s)))
		}
	}
	return out
}

// EssentialRequirements returns the number of essential requirements on the brief.
func (b *Brief) EssentialRequirements() int {
	list, _ := b.Data["essentialRequirements"].([]any)
	return len(list)
}

var lengthPattern = regexp.MustCompile(`^\s*(\d+)\s*(day|week)s?\s*$`)

// MaxRequirementsDays bounds how long a brief may stay open.
const MaxRequirementsDays = 52 * 7

// RequirementsLength returns how long a published brief stays open.
// Missing, malformed, zero or over-long values fall back to def.
func (b *Brief) RequirementsLength(def time.Duration) time.Duration {
	m := lengthPattern.FindStringSubmatch(strings.ToLower(b.str("requirementsLength")))
	if m == nil {
		return def
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return def
	}
	if m[2] == "week" {
		if n > MaxRequirementsDays/7 {
			return def
		}
		n *= 7
	}
	if n > MaxRequirementsDays {
		return def
	}
	return time.Duration(n) * 24 * time.Hour
}

// BriefCounts holds the number of a buyer's briefs per status.
type BriefCounts struct {
	Draft     int `json:"draft"`
	Live      int `json:"live"`
	Closed    int `json:"closed"`
	Withdrawn int `json:"withdrawn"`
}

// BriefSummary is a dashboard row.
type BriefSummary struct {
	ID            int64      `json:"id"`
	Title         string     `json:"name"`
	LotSlug       string     `json:"lot"`
	Status        string     `json:"status"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	ResponseCount int        `json:"responses"`
}

// BriefAssessor is a person invited to evaluate responses to a brief.
type BriefAssessor struct {
	ID           int64  `json:"id"`
	BriefID      int64  `json:"brief_id"`
	UserID       *int64 `json:"user_id,omitempty"`
	EmailAddress string `json:"email_address"`
	ViewDayRates bool   `json:"view_day_rates"`
}

// BriefQuestion is a question a seller asked about a brief.
type BriefQuestion struct {
	ID           int64     `json:"id"`
	BriefID      int64     `json:"brief_id"`
	SupplierCode int64     `json:"supplier_code"`
	SupplierName string    `json:"supplier_name"`
	Question     string    `json:"question"`
	CreatedAt    time.Time `json:"created_at"`
}

// BriefClarificationQuestion is a question the buyer answered publicly.
type BriefClarificationQuestion struct {
	ID          int64     `json:"id"`
	BriefID     int64     `json:"brief_id"`
	UserID      int64     `json:"user_id"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	PublishedAt time.Time `json:"published_at"`
}
