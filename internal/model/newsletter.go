package model

import "time"

// Platform identifies a social network a newsletter maintains a presence on.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
	PlatformThreads   Platform = "threads"
	PlatformBluesky   Platform = "bluesky"
	PlatformMastodon  Platform = "mastodon"
	PlatformOther     Platform = "other"
)

// Fields holds the normalized subset of canonical fields a single source
// observed. An empty string or nil pointer means the source did not supply
// the field; normalization never invents a value.
type Fields struct {
	Name            string              `json:"name,omitempty"`
	Link            string              `json:"link,omitempty"`
	Publisher       string              `json:"publisher,omitempty"`
	Email           string              `json:"email,omitempty"`
	SubscriberCount *int                `json:"subscriber_count,omitempty"`
	Social          map[Platform]string `json:"social_accounts,omitempty"`
}

// FieldProvenance records which source currently supplies a canonical
// field's value and the quality score that value won with.
type FieldProvenance struct {
	Source  Source    `json:"source"`
	Quality int       `json:"quality"`
	SeenAt  time.Time `json:"seen_at"`
}

// Newsletter is the canonical merged record for one publication. The merge
// engine creates it on first sighting of an identity key and mutates it in
// place as later records with the same key arrive; after finalization it is
// never mutated again.
type Newsletter struct {
	IdentityKey     string                     `json:"identity_key"`
	Name            string                     `json:"name,omitempty"`
	Link            string                     `json:"link,omitempty"`
	Publisher       string                     `json:"publisher,omitempty"`
	Email           string                     `json:"email,omitempty"`
	SubscriberCount *int                       `json:"subscriber_count,omitempty"`
	Social          map[Platform]string        `json:"social_accounts,omitempty"`
	Provenance      map[string]FieldProvenance `json:"field_provenance,omitempty"`
	Complete        bool                       `json:"is_complete"`
}

// IsComplete reports whether all required fields are present: name, link,
// publisher, email, and subscriber count. Social accounts are not required.
func (n *Newsletter) IsComplete() bool {
	return n.Name != "" &&
		n.Link != "" &&
		n.Publisher != "" &&
		n.Email != "" &&
		n.SubscriberCount != nil
}
