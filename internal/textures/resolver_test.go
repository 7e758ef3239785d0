package textures

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"ely.by/authlib/internal/profiles"
)

const fullPayload = `{
	"timestamp": 1706786775000,
	"profileId": "ba866a9cc8394268a30f7b26ae604c51",
	"profileName": "mOcK",
	"textures": {
		"SKIN": {"url": "https://payload/skin.png", "metadata": {"model": "slim"}},
		"CAPE": {"url": "https://payload/cape.png"}
	}
}`

func encodePayload(payload string) string {
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

func createProfile(props ...profiles.Property) *profiles.Profile {
	profile := profiles.NewProfile(uuid.MustParse("ba866a9c-c839-4268-a30f-7b26ae604c51"), "mOcK")
	for _, prop := range props {
		profile.SetProperty(prop)
	}

	return profile
}

func skinOverride() []profiles.Property {
	return []profiles.Property{
		{Name: profiles.SkinUrlProperty, Value: "https://launcher/skin.png"},
		{Name: profiles.SkinDigestProperty, Value: "deadbeef"},
	}
}

func cloakOverride() []profiles.Property {
	return []profiles.Property{
		{Name: profiles.CloakUrlProperty, Value: "https://launcher/cloak.png"},
		{Name: profiles.CloakDigestProperty, Value: "cafe01"},
	}
}

func payloadProperty(payload string) profiles.Property {
	return profiles.Property{Name: profiles.TexturesProperty, Value: encodePayload(payload), Signature: "signature"}
}

type ResolverSuite struct {
	suite.Suite

	Resolver *Resolver
}

func (t *ResolverSuite) SetupSubTest() {
	resolver, err := NewResolver(profiles.Config{})
	t.Require().NoError(err)
	t.Resolver = resolver
}

func (t *ResolverSuite) TestResolveTextures() {
	t.Run("no textures at all", func() {
		result := t.Resolver.ResolveTextures(context.Background(), createProfile())
		t.True(result.IsEmpty())
		t.Nil(result.Skin)
		t.Nil(result.Cape)
	})

	t.Run("nil profile", func() {
		var result *Textures
		t.NotPanics(func() {
			result = t.Resolver.ResolveTextures(context.Background(), nil)
		})
		t.True(result.IsEmpty())
	})

	t.Run("both overrides", func() {
		profile := createProfile(append(skinOverride(), cloakOverride()...)...)

		result := t.Resolver.ResolveTextures(context.Background(), profile)
		t.Equal(&Textures{
			Skin: &Texture{Url: "https://launcher/skin.png", Digest: "deadbeef"},
			Cape: &Texture{Url: "https://launcher/cloak.png", Digest: "cafe01"},
		}, result)
	})

	t.Run("override without digest is ignored", func() {
		profile := createProfile(profiles.Property{Name: profiles.SkinUrlProperty, Value: "https://launcher/skin.png"})

		result := t.Resolver.ResolveTextures(context.Background(), profile)
		t.True(result.IsEmpty())
	})

	t.Run("override wins over the payload", func() {
		profile := createProfile(append(skinOverride(), payloadProperty(fullPayload))...)

		result := t.Resolver.ResolveTextures(context.Background(), profile)
		t.Equal(&Texture{Url: "https://launcher/skin.png", Digest: "deadbeef"}, result.Skin)
		t.Equal(&Texture{Url: "https://payload/cape.png"}, result.Cape)
	})

	t.Run("missing kind is filled from the payload", func() {
		profile := createProfile(append(cloakOverride(), payloadProperty(fullPayload))...)

		result := t.Resolver.ResolveTextures(context.Background(), profile)
		t.Equal(&Texture{Url: "https://launcher/cloak.png", Digest: "cafe01"}, result.Cape)
		t.Equal(&Texture{Url: "https://payload/skin.png"}, result.Skin)
		t.Empty(result.Skin.Digest)
	})

	t.Run("payload is ignored when all kinds are overridden", func() {
		props := append(skinOverride(), cloakOverride()...)
		props = append(props, profiles.Property{Name: profiles.TexturesProperty, Value: "invalid base64"})

		result := t.Resolver.ResolveTextures(context.Background(), createProfile(props...))
		t.Equal(2, result.Len())
		t.Equal("https://launcher/skin.png", result.Skin.Url)
		t.Equal("https://launcher/cloak.png", result.Cape.Url)
	})

	t.Run("payload only", func() {
		result := t.Resolver.ResolveTextures(context.Background(), createProfile(payloadProperty(fullPayload)))
		t.Equal(&Textures{
			Skin: &Texture{Url: "https://payload/skin.png"},
			Cape: &Texture{Url: "https://payload/cape.png"},
		}, result)
	})

	t.Run("payload with a single kind", func() {
		profile := createProfile(payloadProperty(`{"textures":{"SKIN":{"url":"https://payload/skin.png"}}}`))

		result := t.Resolver.ResolveTextures(context.Background(), profile)
		t.Equal(1, result.Len())
		t.Equal("https://payload/skin.png", result.Skin.Url)
		t.Nil(result.Cape)
	})

	t.Run("invalid base64 keeps overrides", func() {
		props := append(skinOverride(), profiles.Property{Name: profiles.TexturesProperty, Value: "this is invalid base64"})

		result := t.Resolver.ResolveTextures(context.Background(), createProfile(props...))
		t.Equal(&Textures{
			Skin: &Texture{Url: "https://launcher/skin.png", Digest: "deadbeef"},
		}, result)
	})

	t.Run("payload is not a json", func() {
		props := append(cloakOverride(), payloadProperty("not a json"))

		result := t.Resolver.ResolveTextures(context.Background(), createProfile(props...))
		t.Equal(1, result.Len())
		t.Equal("https://launcher/cloak.png", result.Cape.Url)
	})

	t.Run("payload without textures object", func() {
		result := t.Resolver.ResolveTextures(context.Background(), createProfile(payloadProperty(`{"profileName":"mOcK"}`)))
		t.True(result.IsEmpty())
	})

	t.Run("payload is a json array", func() {
		result := t.Resolver.ResolveTextures(context.Background(), createProfile(payloadProperty(`["textures"]`)))
		t.True(result.IsEmpty())
	})

	t.Run("textures is not an object", func() {
		result := t.Resolver.ResolveTextures(context.Background(), createProfile(payloadProperty(`{"textures":"SKIN"}`)))
		t.True(result.IsEmpty())
	})

	t.Run("malformed kind does not abort other kinds", func() {
		profile := createProfile(payloadProperty(`{"textures":{"SKIN":"https://payload/skin.png","CAPE":{"url":"https://payload/cape.png"}}}`))

		result := t.Resolver.ResolveTextures(context.Background(), profile)
		t.Nil(result.Skin)
		t.Equal(&Texture{Url: "https://payload/cape.png"}, result.Cape)
	})

	t.Run("url of a wrong type", func() {
		profile := createProfile(payloadProperty(`{"textures":{"SKIN":{"url":42},"CAPE":{"url":"https://payload/cape.png"}}}`))

		result := t.Resolver.ResolveTextures(context.Background(), profile)
		t.Nil(result.Skin)
		t.Equal("https://payload/cape.png", result.Cape.Url)
	})

	t.Run("kind without url", func() {
		profile := createProfile(payloadProperty(`{"textures":{"SKIN":{"metadata":{"model":"slim"}}}}`))

		result := t.Resolver.ResolveTextures(context.Background(), profile)
		t.True(result.IsEmpty())
	})

	t.Run("unknown keys are ignored", func() {
		profile := createProfile(payloadProperty(`{"textures":{"ELYTRA":{"url":"https://payload/elytra.png"},"CAPE":{"url":"https://payload/cape.png"}}}`))

		result := t.Resolver.ResolveTextures(context.Background(), profile)
		t.Equal(1, result.Len())
		t.Equal("https://payload/cape.png", result.Cape.Url)
	})

	t.Run("textures disabled", func() {
		resolver, err := NewResolver(profiles.Config{TexturesDisabled: true})
		t.Require().NoError(err)
		props := append(skinOverride(), cloakOverride()...)
		props = append(props, payloadProperty(fullPayload))

		result := resolver.ResolveTextures(context.Background(), createProfile(props...))
		t.True(result.IsEmpty())
	})
}

func TestResolver(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "SKIN", Skin.String())
	require.Equal(t, "CAPE", Cape.String())
	require.Equal(t, "UNKNOWN", Kind(42).String())
}
