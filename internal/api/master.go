package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unite-stats/internal/config"
	"unite-stats/internal/constants"
	"unite-stats/internal/domain"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

// MasterClient fetches the Pokémon master list from its static JSON location.
type MasterClient struct {
	url     string
	client  *fasthttp.Client
	limiter *rate.Limiter
}

func NewMasterClient(cfg *config.Config) *MasterClient {
	return &MasterClient{
		url: cfg.MasterDataURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     10,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter: rate.NewLimiter(constants.MasterRatePerSec, 1),
	}
}

func (c *MasterClient) GetPokemons(ctx context.Context) ([]domain.Pokemon, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	pokemons, err := doRequest[[]domain.Pokemon](ctx, c.client, c.url)
	if err != nil {
		return nil, err
	}
	return *pokemons, nil
}

func doRequest[T any](ctx context.Context, client *fasthttp.Client, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.DoTimeout(req, resp, constants.ExternalAPITimeout); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}
