package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/newsletter-cli/internal/model"
)

// ErrSinkWrite marks a sink that failed to produce its artifact. The run is
// reported as failed even though canonical records were computed.
var ErrSinkWrite = eris.New("sink: write failed")

// Sink consumes the finalized canonical records plus the run result. A sink
// must not corrupt prior output on failure; file sinks write to a temp file
// and rename.
type Sink interface {
	// Name identifies the sink in logs and errors.
	Name() string

	// Write persists the records. Called once per run, after finalization.
	Write(ctx context.Context, newsletters []model.Newsletter, result *model.RunResult) error
}

// exportRow is the flat output shape shared by the file sinks.
type exportRow struct {
	Name            string `csv:"name"`
	Link            string `csv:"link"`
	Publisher       string `csv:"publisher"`
	Email           string `csv:"email"`
	SubscriberCount string `csv:"subscriber_count"`
	SocialAccounts  string `csv:"social_accounts"`
	Complete        bool   `csv:"is_complete"`
}

func rowFor(n model.Newsletter) exportRow {
	row := exportRow{
		Name:      n.Name,
		Link:      n.Link,
		Publisher: n.Publisher,
		Email:     n.Email,
		Complete:  n.Complete,
	}
	if n.SubscriberCount != nil {
		row.SubscriberCount = fmt.Sprintf("%d", *n.SubscriberCount)
	}
	row.SocialAccounts = formatSocial(n.Social)
	return row
}

// formatSocial renders the social set as "platform:handle; ..." with
// platforms sorted for stable output.
func formatSocial(social map[model.Platform]string) string {
	if len(social) == 0 {
		return ""
	}
	platforms := make([]string, 0, len(social))
	for p := range social {
		platforms = append(platforms, string(p))
	}
	sort.Strings(platforms)

	parts := make([]string, 0, len(platforms))
	for _, p := range platforms {
		parts = append(parts, p+":"+social[model.Platform(p)])
	}
	return strings.Join(parts, "; ")
}

// writeFileAtomic writes data to a temp file in path's directory and renames
// it into place, so a failed write never clobbers a previous artifact.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
