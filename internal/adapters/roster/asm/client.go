package asm

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"shelter-roster-sync/internal/domain/animals"
	"shelter-roster-sync/internal/platform/httpclient"
	"shelter-roster-sync/internal/platform/logger"
	"shelter-roster-sync/internal/ports/roster"
)

const (
	Name = "asm"

	DefaultBaseURL = "https://service.sheltermanager.com/asmservice"

	photoSource = "asm"
)

var intakeLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// Config del adapter ShelterManager (ASM).
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Deactivation: qué hacer con animales que ya no vienen en el roster.
	// Vacío => delete.
	Deactivation animals.DeactivationMode

	// HTTP opcional (tests); si es nil se crea uno con Timeout.
	HTTP *httpclient.Client
	Log  logger.Logger
	Now  func() time.Time
}

// Client implementa roster.Source contra el servicio XML de ASM.
type Client struct {
	http    *httpclient.Client
	baseURL string
	mode    animals.DeactivationMode
	log     logger.Logger
	now     func() time.Time
}

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := cfg.HTTP
	if hc == nil {
		hc = httpclient.New(cfg.Timeout)
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
		http:    hc,
		baseURL: base,
		mode:    animals.ParseDeactivationMode(string(cfg.Deactivation), animals.DeactivationDelete),
		log:     log.With(map[string]any{"provider": Name}),
		now:     now,
	}
}

func (c *Client) Name() string { return Name }

func (c *Client) DeactivationMode() animals.DeactivationMode { return c.mode }

// Fetch trae el roster completo con un único GET (xml_shelter_animals).
func (c *Client) Fetch(ctx context.Context, creds roster.Credentials, opts roster.FetchOptions) ([]animals.Animal, error) {
	account := strings.TrimSpace(creds.Account)
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" || account == "" {
		return nil, fmt.Errorf("%w: asm requires username, password and account", roster.ErrMissingCredentials)
	}

	q := url.Values{}
	q.Set("account", account)
	q.Set("method", "xml_shelter_animals")
	q.Set("username", strings.TrimSpace(creds.Username))
	q.Set("password", creds.Password)

	raw, err := c.http.Do(ctx, http.MethodGet, httpclient.WithQuery(c.baseURL, q), map[string]string{
		"Accept": "application/xml, text/xml",
	})
	if err != nil {
		return nil, mapError(err)
	}

	rows, err := parseRows(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", roster.ErrParse, err)
	}

	now := c.now().UTC()
	out := make([]animals.Animal, 0, len(rows))
	for i, row := range rows {
		a := c.toAnimal(row, account, now)
		if err := animals.Validate(a); err != nil {
			c.log.Warn("asm row without id, skipping", map[string]any{"row": i})
			continue
		}
		if opts.OnlyPrimaryPhoto {
			a.Photos = animals.PrimaryOnly(a.Photos)
		}
		out = append(out, a)
	}

	c.log.Debug("asm roster fetched", map[string]any{"rows": len(rows), "animals": len(out)})
	return out, nil
}

func (c *Client) toAnimal(row map[string]string, account string, now time.Time) animals.Animal {
	id, _ := first(row, "ID", "id")
	name, _ := first(row, "Name", "animalname")
	species, _ := first(row, "Type", "petfinderspecies", "speciesname")
	description, hasDescription := first(row, "Description", "animalcomments")
	sex, hasSex := row["sexname"]
	breed, hasBreed := row["breedname"]
	intake, _ := first(row, "IntakeDate", "datebroughtin")
	months, hasAge := parseAge(row["animalage"])

	location := animals.JoinLocation(" ", row["shelterlocationunit"], row["shelterlocation"])

	return animals.Animal{
		ID:           strings.TrimSpace(id),
		Species:      animals.MapSpecies(species),
		Name:         animals.NormalizeName(name),
		Location:     location,
		FullLocation: location,
		IntakeDate:   animals.ParseDate(intake, now, intakeLayouts...),
		Description:  animals.OptionalString(description, hasDescription),
		Sex:          animals.OptionalString(strings.ToLower(sex), hasSex),
		MonthsOld:    animals.OptionalInt(months, hasAge),
		Breed:        animals.OptionalString(breed, hasBreed),
		Photos:       c.photos(account, strings.TrimSpace(id), row["websiteimagecount"], now),
		InKennel:     true,
		IsActive:     true,
	}
}

// photos sintetiza una URL animal_image por cada imagen publicada.
// El orden de los params se mantiene estable: la URL es la identidad de la foto
// (tombstones incluidos).
func (c *Client) photos(account, animalID, rawCount string, now time.Time) []animals.Photo {
	n, err := strconv.Atoi(strings.TrimSpace(rawCount))
	if err != nil || n <= 0 || animalID == "" {
		return []animals.Photo{}
	}
	out := make([]animals.Photo, 0, n)
	for seq := 1; seq <= n; seq++ {
		u := fmt.Sprintf("%s?account=%s&method=animal_image&animalid=%s&seq=%d",
			c.baseURL, url.QueryEscape(account), url.QueryEscape(animalID), seq)
		out = append(out, animals.NewProviderPhoto(u, photoSource, "", "", now))
	}
	return out
}

func first(row map[string]string, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := row[k]; ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	for _, k := range keys {
		if v, ok := row[k]; ok {
			return v, true
		}
	}
	return "", false
}

var (
	yearsRe  = regexp.MustCompile(`(?i)(\d+)\s*years?`)
	monthsRe = regexp.MustCompile(`(?i)(\d+)\s*months?`)
	weeksRe  = regexp.MustCompile(`(?i)(\d+)\s*(weeks?|days?)`)
)

// parseAge interpreta "2 years 3 months", "5 months", "3 weeks".
func parseAge(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	total, matched := 0, false
	if m := yearsRe.FindStringSubmatch(raw); m != nil {
		y, _ := strconv.Atoi(m[1])
		total += y * 12
		matched = true
	}
	if m := monthsRe.FindStringSubmatch(raw); m != nil {
		mo, _ := strconv.Atoi(m[1])
		total += mo
		matched = true
	}
	if !matched && weeksRe.MatchString(raw) {
		matched = true
	}
	return total, matched
}

// parseRows recorre el documento y devuelve cada <row> como mapa tag->texto
// de sus hijos directos.
func parseRows(raw []byte) ([]map[string]string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("empty response")
	}

	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.CharsetReader = charsetReader

	var (
		rows    []map[string]string
		cur     map[string]string
		field   string
		text    strings.Builder
		depth   int
		sawRoot bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawRoot = true
			if cur == nil {
				if t.Name.Local == "row" {
					cur = map[string]string{}
					depth = 0
				}
				continue
			}
			depth++
			if depth == 1 {
				field = t.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if cur != nil && depth == 1 {
				text.Write(t)
			}
		case xml.EndElement:
			if cur == nil {
				continue
			}
			if depth == 0 {
				rows = append(rows, cur)
				cur = nil
				continue
			}
			if depth == 1 {
				cur[field] = strings.TrimSpace(text.String())
			}
			depth--
		}
	}

	if !sawRoot {
		return nil, errors.New("response is not xml")
	}
	return rows, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
}

// mapError traduce errores del httpclient a los sentinels del port.
// Nunca incluye la URL: lleva la password en la query.
func mapError(err error) error {
	var he *httpclient.HTTPError
	if errors.As(err, &he) {
		if he.Unauthorized() {
			return fmt.Errorf("%w: status=%d", roster.ErrAuth, he.StatusCode)
		}
		return fmt.Errorf("%w: status=%d", roster.ErrTransport, he.StatusCode)
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%w: %v", roster.ErrTransport, ue.Err)
	}
	return fmt.Errorf("%w: %v", roster.ErrTransport, err)
}
