package profiles

import (
	"encoding/hex"
	"log/slog"
)

type Config struct {
	// TexturesDisabled turns off both textures decoration and textures resolution
	TexturesDisabled bool
}

func NewDecorator(config Config) *Decorator {
	return &Decorator{
		Config: config,
	}
}

type Decorator struct {
	Config
}

// AttachTextures writes textures of the record into the override properties of the profile
func (d *Decorator) AttachTextures(profile *Profile, record *PlayerRecord) {
	if profile == nil || record == nil || d.TexturesDisabled {
		return
	}

	slog.Debug("Attaching textures to the profile", slog.String("username", profile.Name))

	if record.Skin != nil {
		profile.SetProperty(Property{Name: SkinUrlProperty, Value: record.Skin.Url})
		profile.SetProperty(Property{Name: SkinDigestProperty, Value: hex.EncodeToString(record.Skin.Digest)})
		slog.Debug("The profile has a skin texture", slog.String("username", profile.Name))
	}

	if record.Cloak != nil {
		profile.SetProperty(Property{Name: CloakUrlProperty, Value: record.Cloak.Url})
		profile.SetProperty(Property{Name: CloakDigestProperty, Value: hex.EncodeToString(record.Cloak.Digest)})
		slog.Debug("The profile has a cloak texture", slog.String("username", profile.Name))
	}
}

func (d *Decorator) ToPublicProfile(record *PlayerRecord) *Profile {
	profile := NewProfile(record.Uuid, record.Username)
	d.AttachTextures(profile, record)

	return profile
}
