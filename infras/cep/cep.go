package cep

//go:generate go run go.uber.org/mock/mockgen -source=./cep.go -destination=./mocks/cep_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	"pousada/config"
	"pousada/infras/otel"
	"pousada/shared/constant"
)

var nonDigits = regexp.MustCompile(`\D`)

const cepLength = 8

// Address is the subset of the BrasilAPI response the room catalog uses.
type Address struct {
	CEP          string `json:"cep"`
	State        string `json:"state"`
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
}

// Client resolves Brazilian postal codes to addresses.
type Client interface {
	Lookup(ctx context.Context, cep string) *Address
}

type clientImpl struct {
	baseURL string
	http    *http.Client
	otel    otel.Otel
}

func New(cfg *config.Config, otl otel.Otel) Client {
	return &clientImpl{
		baseURL: cfg.External.CEP.BaseURL,
		http: &http.Client{
			Timeout: time.Duration(cfg.External.CEP.TimeoutSeconds) * time.Second,
		},
		otel: otl,
	}
}

// Normalize strips every non digit character from the given CEP. It returns
// the empty string when the remainder is not exactly eight digits.
func Normalize(cep string) string {
	digits := nonDigits.ReplaceAllString(cep, constant.Empty)

	if len(digits) != cepLength {
		return constant.Empty
	}

	return digits
}

// Lookup resolves the given CEP against BrasilAPI. Address autofill is a
// convenience, never a requirement, so every failure is logged and reported
// as a nil address instead of an error.
func (c *clientImpl) Lookup(ctx context.Context, cep string) *Address {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelCepScopeName, constant.OtelCepScopeName+".Lookup")
	defer scope.End()

	digits := Normalize(cep)
	if digits == constant.Empty {
		return nil
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, digits)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Warn().Err(err).Str("cep", digits).Msg("failed to build CEP lookup request")

		return nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("cep", digits).Msg("CEP lookup failed")

		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("cep", digits).Msg("CEP lookup returned non OK status")

		return nil
	}

	var address Address
	if err := json.NewDecoder(resp.Body).Decode(&address); err != nil {
		log.Warn().Err(err).Str("cep", digits).Msg("failed to decode CEP lookup response")

		return nil
	}

	return &address
}
