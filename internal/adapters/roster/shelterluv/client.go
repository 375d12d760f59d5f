package shelterluv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shelter-roster-sync/internal/domain/animals"
	"shelter-roster-sync/internal/platform/httpclient"
	"shelter-roster-sync/internal/platform/logger"
	"shelter-roster-sync/internal/ports/roster"
)

const (
	Name = "shelterluv"

	DefaultBaseURL  = "https://www.shelterluv.com"
	DefaultPageSize = 100

	animalsPath = "/api/v1/animals"

	photoSource   = "shelterluv"
	photoAuthor   = "ShelterLuv"
	photoAuthorID = "shelterluv_api"
)

type Config struct {
	BaseURL  string
	PageSize int
	Timeout  time.Duration

	// Vacío => deactivate.
	Deactivation animals.DeactivationMode

	HTTP *httpclient.Client
	Log  logger.Logger
	Now  func() time.Time
}

// Client implementa roster.Source contra la API REST de ShelterLuv.
type Client struct {
	http     *httpclient.Client
	pageSize int
	mode     animals.DeactivationMode
	log      logger.Logger
	now      func() time.Time
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	hc := cfg.HTTP
	if hc == nil {
		hc = httpclient.New(cfg.Timeout)
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid shelterluv base url: %w", err)
	}
	hc.BaseURL = strings.TrimRight(base, "/")

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		http:     hc,
		pageSize: pageSize,
		mode:     animals.ParseDeactivationMode(string(cfg.Deactivation), animals.DeactivationDeactivate),
		log:      log.With(map[string]any{"provider": Name}),
		now:      now,
	}, nil
}

func (c *Client) Name() string { return Name }

func (c *Client) DeactivationMode() animals.DeactivationMode { return c.mode }

// Fetch pagina secuencialmente (limit/offset) hasta recibir una página vacía.
func (c *Client) Fetch(ctx context.Context, creds roster.Credentials, opts roster.FetchOptions) ([]animals.Animal, error) {
	apiKey := strings.TrimSpace(creds.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: shelterluv requires an api key", roster.ErrMissingCredentials)
	}
	headers := map[string]string{"X-Api-Key": apiKey}

	var raw []slAnimal
	for offset, page := 0, 0; ; offset, page = offset+c.pageSize, page+1 {
		q := url.Values{}
		q.Set("status_type", "in custody")
		q.Set("limit", strconv.Itoa(c.pageSize))
		q.Set("offset", strconv.Itoa(offset))

		var out animalsPage
		if err := c.http.DoJSON(ctx, http.MethodGet, httpclient.WithQuery(animalsPath, q), headers, nil, &out); err != nil {
			return nil, mapError(err)
		}
		if len(out.Animals) == 0 {
			c.log.Debug("shelterluv pagination done", map[string]any{"pages": page, "animals": len(raw)})
			break
		}
		raw = append(raw, out.Animals...)
	}

	now := c.now().UTC()
	result := make([]animals.Animal, 0, len(raw))
	for i, in := range raw {
		a := toAnimal(in, now)
		if err := animals.Validate(a); err != nil {
			c.log.Warn("shelterluv animal without id, skipping", map[string]any{"index": i})
			continue
		}
		if opts.OnlyPrimaryPhoto {
			a.Photos = animals.PrimaryOnly(a.Photos)
		}
		result = append(result, a)
	}
	return result, nil
}

type animalsPage struct {
	Animals    []slAnimal `json:"animals"`
	HasMore    bool       `json:"has_more"`
	TotalCount int        `json:"total_count"`
}

type slAnimal struct {
	ID                 flexString `json:"ID"`
	Name               string     `json:"Name"`
	Type               string     `json:"Type"`
	Sex                *string    `json:"Sex"`
	Age                *flexInt   `json:"Age"`
	Breed              *string    `json:"Breed"`
	Description        *string    `json:"Description"`
	CurrentLocation    *location  `json:"CurrentLocation"`
	Photos             []string   `json:"Photos"`
	LastIntakeUnixTime *flexInt   `json:"LastIntakeUnixTime"`
}

type location struct {
	Tier1 string `json:"Tier1"`
	Tier2 string `json:"Tier2"`
	Tier3 string `json:"Tier3"`
	Tier4 string `json:"Tier4"`
	Tier5 string `json:"Tier5"`
}

func (l *location) tiers() []string {
	if l == nil {
		return nil
	}
	return []string{l.Tier1, l.Tier2, l.Tier3, l.Tier4, l.Tier5}
}

func toAnimal(in slAnimal, now time.Time) animals.Animal {
	tiers := in.CurrentLocation.tiers()

	intake := now
	if in.LastIntakeUnixTime != nil && *in.LastIntakeUnixTime > 0 {
		intake = time.Unix(int64(*in.LastIntakeUnixTime), 0).UTC()
	}

	var sex *string
	if in.Sex != nil {
		sex = animals.OptionalString(strings.ToLower(*in.Sex), true)
	}
	var months *int
	if in.Age != nil {
		months = animals.OptionalInt(int(*in.Age), true)
	}

	photos := make([]animals.Photo, 0, len(in.Photos))
	for _, u := range in.Photos {
		if u = strings.TrimSpace(u); u == "" {
			continue
		}
		photos = append(photos, animals.NewProviderPhoto(u, photoSource, photoAuthor, photoAuthorID, now))
	}

	return animals.Animal{
		ID:           strings.TrimSpace(string(in.ID)),
		Species:      animals.MapSpecies(in.Type),
		Name:         animals.NormalizeName(in.Name),
		Location:     animals.JoinLocation(" ", tiers...),
		FullLocation: animals.JoinLocation(" > ", tiers...),
		IntakeDate:   intake,
		Description:  in.Description,
		Sex:          sex,
		MonthsOld:    months,
		Breed:        in.Breed,
		Photos:       photos,
		InKennel:     true,
		IsActive:     true,
	}
}

// flexString acepta "123" o 123.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// flexInt acepta 1700000000, "1700000000" o "".
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	v := strings.TrimSpace(string(s))
	if v == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q", v)
	}
	*n = flexInt(f)
	return nil
}

func mapError(err error) error {
	switch {
	case httpclient.IsUnauthorized(err):
		return fmt.Errorf("%w: %v", roster.ErrAuth, err)
	case errors.Is(err, httpclient.ErrDecode):
		return fmt.Errorf("%w: %v", roster.ErrParse, err)
	default:
		return fmt.Errorf("%w: %v", roster.ErrTransport, err)
	}
}
