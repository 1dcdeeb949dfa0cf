package domain

import "time"

// Group tags a slot with the guest app section it belongs to.
type Group string

const (
	GroupHome      Group = "home"
	GroupHub       Group = "hub"
	GroupRoom      Group = "room"
	GroupEvents    Group = "events"
	GroupArea      Group = "area"
	GroupConcierge Group = "concierge"
)

// Slot is a fixed image placement in the guest app. Slots are configuration,
// never created or changed at runtime.
type Slot struct {
	ID      string
	Label   string
	Group   Group
	Default string
}

// RenditionKind names one of the two derived copies stored per asset.
type RenditionKind string

const (
	RenditionThumb   RenditionKind = "thumb"
	RenditionDisplay RenditionKind = "display"
)

// Valid reports whether k is a known rendition kind.
func (k RenditionKind) Valid() bool {
	return k == RenditionThumb || k == RenditionDisplay
}

type Rendition struct {
	Kind     RenditionKind
	Width    int
	Height   int
	MimeType string
	Data     []byte
}

// AssetSummary is the lightweight view of an uploaded image, without binaries.
// Width and Height are those of the original upload, not of any rendition.
type AssetSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Filename     string    `json:"filename"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	ThumbBytes   int64     `json:"thumbBytes"`
	DisplayBytes int64     `json:"displayBytes"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// Asset is the full record: metadata plus both renditions.
type Asset struct {
	AssetSummary
	Thumb   Rendition
	Display Rendition
}

// Summary projects the full record onto its binary-free view.
func (a *Asset) Summary() AssetSummary {
	return a.AssetSummary
}

// Assignment overrides a slot's default image with an uploaded asset. AssetID
// is a weak reference; nothing guarantees the asset still exists.
type Assignment struct {
	SlotID     string    `json:"slotId"`
	AssetID    string    `json:"mediaId"`
	AssignedAt time.Time `json:"-"`
}
