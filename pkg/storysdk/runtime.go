package storysdk

import (
	"fmt"
	"os"
	"strings"

	"github.com/storyprotocol/story-sdk-go/internal/devseed"
	"github.com/storyprotocol/story-sdk-go/pkg/ipaccount"
	ipaccountmock "github.com/storyprotocol/story-sdk-go/pkg/ipaccount/mock"
	"github.com/storyprotocol/story-sdk-go/pkg/license"
	licensemock "github.com/storyprotocol/story-sdk-go/pkg/license/mock"
)

const (
	envMode        = "STORY_RUNTIME_MODE"
	envGatewayURL  = "STORY_API_URL"
	envTermsSeed   = "STORY_MOCK_TERMS_SEED"
	envAccountSeed = "STORY_MOCK_ACCOUNT_SEED"

	modeAuto = "auto"
	modeHTTP = "http"
	modeMock = "mock"
)

// NewFromEnv initialises IP-account and license clients based on environment
// variables and returns the resolved mode ("http" or "mock").
func NewFromEnv() (*ipaccount.Client, *license.Client, string, error) {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv(envMode)))
	baseURL := strings.TrimSpace(os.Getenv(envGatewayURL))

	switch mode {
	case "", modeAuto:
		if baseURL != "" {
			return newHTTPClients(baseURL)
		}
		return newMockClients()
	case modeHTTP:
		if baseURL == "" {
			return nil, nil, "", fmt.Errorf("storysdk: HTTP mode requires %s", envGatewayURL)
		}
		return newHTTPClients(baseURL)
	case modeMock:
		return newMockClients()
	default:
		return nil, nil, "", fmt.Errorf("storysdk: unsupported %s value %q", envMode, mode)
	}
}

func newHTTPClients(baseURL string) (*ipaccount.Client, *license.Client, string, error) {
	accounts, err := ipaccount.New(baseURL)
	if err != nil {
		return nil, nil, "", fmt.Errorf("storysdk: init ipaccount HTTP client: %w", err)
	}
	licenses, err := license.New(baseURL)
	if err != nil {
		return nil, nil, "", fmt.Errorf("storysdk: init license HTTP client: %w", err)
	}
	return accounts, licenses, modeHTTP, nil
}

func newMockClients() (*ipaccount.Client, *license.Client, string, error) {
	accountMock := ipaccountmock.New()
	if path := strings.TrimSpace(os.Getenv(envAccountSeed)); path != "" {
		entries, err := devseed.LoadIPAccountSeed(path)
		if err != nil {
			return nil, nil, "", fmt.Errorf("storysdk: load ip account seed: %w", err)
		}
		accountMock.Seed(entries)
	}

	licenseMock := licensemock.New()
	if path := strings.TrimSpace(os.Getenv(envTermsSeed)); path != "" {
		entries, err := devseed.LoadLicenseTermsSeed(path)
		if err != nil {
			return nil, nil, "", fmt.Errorf("storysdk: load license terms seed: %w", err)
		}
		if err := licenseMock.Seed(entries); err != nil {
			return nil, nil, "", fmt.Errorf("storysdk: apply license terms seed: %w", err)
		}
	}

	return ipaccount.NewWithBackend(accountMock), license.NewWithBackend(licenseMock), modeMock, nil
}
