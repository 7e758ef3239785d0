package textures

import (
	"ely.by/authlib/internal/profiles"
)

type Kind int

const (
	Skin Kind = iota
	Cape
)

// Kinds lists every known texture kind. A profile can't have more textures than this
var Kinds = [...]Kind{Skin, Cape}

// String returns the kind name as it appears in the textures payload
func (k Kind) String() string {
	switch k {
	case Skin:
		return "SKIN"
	case Cape:
		return "CAPE"
	}

	return "UNKNOWN"
}

type Texture struct {
	Url string `json:"url"`
	// Digest is empty when the texture was taken from the textures payload
	Digest string `json:"digest,omitempty"`
}

type Textures struct {
	Skin *Texture `json:"SKIN,omitempty"`
	Cape *Texture `json:"CAPE,omitempty"`
}

func (t *Textures) Get(kind Kind) *Texture {
	switch kind {
	case Skin:
		return t.Skin
	case Cape:
		return t.Cape
	}

	return nil
}

func (t *Textures) Len() int {
	l := 0
	for _, kind := range Kinds {
		if t.Get(kind) != nil {
			l++
		}
	}

	return l
}

func (t *Textures) IsEmpty() bool {
	return t.Len() == 0
}

func (t *Textures) set(kind Kind, texture *Texture) {
	switch kind {
	case Skin:
		t.Skin = texture
	case Cape:
		t.Cape = texture
	}
}

type overrideProperties struct {
	url    string
	digest string
}

var overrides = map[Kind]overrideProperties{
	Skin: {url: profiles.SkinUrlProperty, digest: profiles.SkinDigestProperty},
	Cape: {url: profiles.CloakUrlProperty, digest: profiles.CloakDigestProperty},
}
