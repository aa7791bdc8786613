package openai

import (
	"net/http"
	"os"

	"github.com/effective-security/x/values"
	"github.com/openai/openai-go/v3/option"
)

const (
	TokenEnvVarName   = "OPENAI_API_KEY"  //nolint:gosec
	ModelEnvVarName   = "OPENAI_MODEL"    //nolint:gosec
	BaseURLEnvVarName = "OPENAI_BASE_URL" //nolint:gosec
	OrgEnvVarName     = "OPENAI_ORGANIZATION"
)

type Options struct {
	Token        string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   option.HTTPClient
}

// Option is a functional option for the OpenAI client.
type Option func(*Options)

func applyOptions(opts ...Option) *Options {
	options := &Options{
		Token:        os.Getenv(TokenEnvVarName),
		Model:        os.Getenv(ModelEnvVarName),
		BaseURL:      values.StringsCoalesce(os.Getenv(BaseURLEnvVarName), "https://api.openai.com/v1"),
		Organization: os.Getenv(OrgEnvVarName),
		HTTPClient:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithToken passes the OpenAI API token to the client. If not set, the token
// is read from the OPENAI_API_KEY environment variable.
func WithToken(token string) Option {
	return func(opts *Options) {
		opts.Token = token
	}
}

// WithModel passes the OpenAI model to the client. If not set, the model
// is read from the OPENAI_MODEL environment variable.
func WithModel(model string) Option {
	return func(opts *Options) {
		opts.Model = model
	}
}

// WithBaseURL passes the OpenAI base url to the client. Any compatible
// endpoint works here, for example https://openrouter.ai/api/v1.
func WithBaseURL(baseURL string) Option {
	return func(opts *Options) {
		opts.BaseURL = baseURL
	}
}

// WithOrganization passes the OpenAI organization to the client.
func WithOrganization(organization string) Option {
	return func(opts *Options) {
		opts.Organization = organization
	}
}

// WithHTTPClient allows setting a custom HTTP client.
func WithHTTPClient(client option.HTTPClient) Option {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}
