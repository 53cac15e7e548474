package hh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"golang.org/x/time/rate"
	"io"
	"net/http"
	"strings"
)

const DefaultBaseURL = "https://api.hh.ru"

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
	baseURL     string
	userAgent   string
}

func NewClient() *Client {
	return &Client{httpClient: &http.Client{}, baseURL: DefaultBaseURL}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// SetUserAgent sets the HH-User-Agent header hh requires from API consumers.
func (c *Client) SetUserAgent(userAgent string) {
	c.userAgent = userAgent
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	if maxRequestsPerSecond <= 0 {
		c.rateLimiter = nil
		return
	}
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

func (c *Client) GetVacanciesPage(ctx context.Context, parameters SearchParameters) (VacanciesPage, error) {

	if err := parameters.Validate(); err != nil {
		return VacanciesPage{}, fmt.Errorf("invalid parameters: %w", err)
	}

	apiURL := c.baseURL + "/vacancies?" + parameters.ToUrlParams().Encode()

	body, err := c.sendRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return VacanciesPage{}, err
	}

	var page VacanciesPage
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&page); err != nil {
		return VacanciesPage{}, fmt.Errorf("error decoding JSON response: %w", err)
	}

	return page, nil
}

// GetVacancyByURL fetches the full record behind a reference taken from a search page.
func (c *Client) GetVacancyByURL(ctx context.Context, vacancyURL string) (Vacancy, error) {

	body, err := c.sendRequest(ctx, http.MethodGet, vacancyURL, nil)
	if err != nil {
		return Vacancy{}, err
	}

	var vacancy Vacancy
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&vacancy); err != nil {
		return Vacancy{}, fmt.Errorf("error decoding JSON response: %w", err)
	}

	return vacancy, nil
}

func (c *Client) GetVacancy(ctx context.Context, id string) (Vacancy, error) {
	return c.GetVacancyByURL(ctx, c.baseURL+"/vacancies/"+id)
}

func (c *Client) GetAreas(ctx context.Context) ([]Area, error) {

	body, err := c.sendRequest(ctx, http.MethodGet, c.baseURL+"/areas", nil)
	if err != nil {
		return nil, err
	}

	var areas []area
	if err = json.NewDecoder(bytes.NewReader(body)).Decode(&areas); err != nil {
		return nil, fmt.Errorf("error decoding JSON response: %w", err)
	}

	return flattenAreas(areas), nil
}

func (c *Client) sendRequest(ctx context.Context, method string, url string, body io.Reader) ([]byte, error) {

	if c.rateLimiter != nil {
		err := c.rateLimiter.Wait(ctx)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("HH-User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("request failed with status %v, body: %v", resp.StatusCode, string(body))
	}

	return body, nil
}
