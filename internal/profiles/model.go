package profiles

import (
	"github.com/google/uuid"
)

// Names of the properties the launcher uses to pass textures overrides
const (
	SkinUrlProperty     = "skinURL"
	SkinDigestProperty  = "skinDigest"
	CloakUrlProperty    = "cloakURL"
	CloakDigestProperty = "cloakDigest"
)

// TexturesProperty holds the base64 encoded textures payload published by the identity directory
const TexturesProperty = "textures"

// Profile is a public player's profile, which is visible to the game
type Profile struct {
	Id         uuid.UUID
	Name       string
	Properties Properties
}

func NewProfile(id uuid.UUID, name string) *Profile {
	return &Profile{
		Id:         id,
		Name:       name,
		Properties: make(Properties),
	}
}

func (p *Profile) Property(name string) (Property, bool) {
	prop, ok := p.Properties[name]
	return prop, ok
}

func (p *Profile) SetProperty(prop Property) {
	if p.Properties == nil {
		p.Properties = make(Properties)
	}

	p.Properties[prop.Name] = prop
}

type Property struct {
	Name  string
	Value string
	// Signature stays empty for the properties written by this module
	Signature string
}

type Properties map[string]Property

// PlayerRecord is an authoritative player's record received from the identity directory
type PlayerRecord struct {
	Uuid     uuid.UUID
	Username string
	Skin     *TextureRecord
	Cloak    *TextureRecord
}

type TextureRecord struct {
	Url string
	// Digest contains a hash of the texture file contents
	Digest []byte
}
