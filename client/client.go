package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/chatbridge/models"
	"github.com/a-h/jsonapi"
)

func New(baseURL string) Client {
	return Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

type Client struct {
	baseURL string
}

// ServerError is returned when the server responds with a non-2xx status.
type ServerError struct {
	Status int
	// Message from the error response body, if it could be read.
	Message string
}

func (e ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("chatbridge: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("chatbridge: unexpected status %d: %s", e.Status, e.Message)
}

func (c Client) ChatPost(ctx context.Context, req models.ChatPostRequest) (resp models.ChatPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("api", "chat").String()
	if err != nil {
		return resp, err
	}
	resp, err = jsonapi.Post[models.ChatPostRequest, models.ChatPostResponse](ctx, url, req)
	return resp, serverError(err)
}

func (c Client) HealthGet(ctx context.Context) (resp models.HealthGetResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("health").String()
	if err != nil {
		return resp, err
	}
	resp, ok, err := jsonapi.Get[models.HealthGetResponse](ctx, url)
	if err != nil {
		return resp, serverError(err)
	}
	if !ok {
		return resp, ServerError{Status: http.StatusNotFound}
	}
	return resp, nil
}

// serverError reads the {error} envelope from a non-2xx response.
func serverError(err error) error {
	var ise jsonapi.InvalidStatusError
	if !errors.As(err, &ise) {
		return err
	}
	se := ServerError{Status: ise.Status}
	var cpe models.ChatPostError
	if json.Unmarshal([]byte(ise.Body), &cpe) == nil && cpe.Error != "" {
		se.Message = cpe.Error
		return se
	}
	return errors.Join(se, ise)
}
