package collector

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// stubFetcher serves canned bodies by URL, standing in for the HTTP fetcher.
type stubFetcher struct {
	responses map[string][]byte
	requested []string
}

func (f *stubFetcher) Get(_ context.Context, url string) ([]byte, error) {
	f.requested = append(f.requested, url)
	body, ok := f.responses[url]
	if !ok {
		return nil, eris.Errorf("stub: no response for %s", url)
	}
	return body, nil
}

func (f *stubFetcher) GetJSON(ctx context.Context, url string, out any) error {
	body, err := f.Get(ctx, url)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
