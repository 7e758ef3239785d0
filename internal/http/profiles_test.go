package http

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"ely.by/authlib/internal/profiles"
	"ely.by/authlib/internal/textures"
)

var mockProfileUuid = uuid.MustParse("0f657aa8-bfbe-415d-b700-5750090d3af3")

type ProfileResolverMock struct {
	mock.Mock
}

func (m *ProfileResolverMock) Resolve(ctx context.Context, profile *profiles.Profile) *profiles.Profile {
	result, _ := m.Called(ctx, profile).Get(0).(*profiles.Profile)
	return result
}

type TextureResolverMock struct {
	mock.Mock
}

func (m *TextureResolverMock) ResolveTextures(ctx context.Context, profile *profiles.Profile) *textures.Textures {
	result, _ := m.Called(ctx, profile).Get(0).(*textures.Textures)
	return result
}

type ProfilesTestSuite struct {
	suite.Suite

	App *ProfilesApi

	ProfileResolver *ProfileResolverMock
	TextureResolver *TextureResolverMock
}

func (t *ProfilesTestSuite) SetupSubTest() {
	t.ProfileResolver = &ProfileResolverMock{}
	t.TextureResolver = &TextureResolverMock{}
	t.App, _ = NewProfilesApi(t.ProfileResolver, t.TextureResolver)
}

func (t *ProfilesTestSuite) TearDownSubTest() {
	t.ProfileResolver.AssertExpectations(t.T())
	t.TextureResolver.AssertExpectations(t.T())
}

func (t *ProfilesTestSuite) TestGetProfile() {
	t.Run("resolve profile", func() {
		resolved := profiles.NewProfile(mockProfileUuid, "mock_username")
		resolved.SetProperty(profiles.Property{Name: profiles.SkinUrlProperty, Value: "https://example.com/skin.png"})
		resolved.SetProperty(profiles.Property{Name: profiles.SkinDigestProperty, Value: "deadbeef"})
		resolved.SetProperty(profiles.Property{Name: profiles.TexturesProperty, Value: "bW9jawo=", Signature: "c2lnbmF0dXJl"})

		t.ProfileResolver.On("Resolve", mock.Anything, profiles.NewProfile(mockProfileUuid, "")).Once().Return(resolved)

		req := httptest.NewRequest("GET", "http://authlib/0f657aa8-bfbe-415d-b700-5750090d3af3", nil)
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)
		result := w.Result()

		t.Equal(http.StatusOK, result.StatusCode)
		t.Equal("application/json", result.Header.Get("Content-Type"))
		body, _ := io.ReadAll(result.Body)
		t.JSONEq(`{
			"id": "0f657aa8bfbe415db7005750090d3af3",
			"name": "mock_username",
			"properties": [
				{"name": "skinDigest", "value": "deadbeef"},
				{"name": "skinURL", "value": "https://example.com/skin.png"},
				{"name": "textures", "value": "bW9jawo=", "signature": "c2lnbmF0dXJl"}
			]
		}`, string(body))
	})

	t.Run("pass the name from the query", func() {
		profile := profiles.NewProfile(mockProfileUuid, "mock_username")
		t.ProfileResolver.On("Resolve", mock.Anything, profile).Once().Return(profile)

		req := httptest.NewRequest("GET", "http://authlib/0f657aa8bfbe415db7005750090d3af3?name=mock_username", nil)
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)
		result := w.Result()

		t.Equal(http.StatusOK, result.StatusCode)
		body, _ := io.ReadAll(result.Body)
		t.JSONEq(`{
			"id": "0f657aa8bfbe415db7005750090d3af3",
			"name": "mock_username",
			"properties": []
		}`, string(body))
	})

	t.Run("invalid uuid", func() {
		req := httptest.NewRequest("GET", "http://authlib/not-a-uuid", nil)
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)
		result := w.Result()

		t.Equal(http.StatusBadRequest, result.StatusCode)
		body, _ := io.ReadAll(result.Body)
		t.JSONEq(`{
			"errors": {
				"uuid": [
					"uuid must be a valid UUID"
				]
			}
		}`, string(body))
		t.ProfileResolver.AssertNotCalled(t.T(), "Resolve", mock.Anything, mock.Anything)
	})
}

func (t *ProfilesTestSuite) TestGetTextures() {
	t.Run("resolve textures", func() {
		profile := profiles.NewProfile(mockProfileUuid, "")
		t.ProfileResolver.On("Resolve", mock.Anything, profile).Once().Return(profile)
		t.TextureResolver.On("ResolveTextures", mock.Anything, profile).Once().Return(&textures.Textures{
			Skin: &textures.Texture{Url: "https://example.com/skin.png", Digest: "deadbeef"},
			Cape: &textures.Texture{Url: "https://example.com/cape.png"},
		})

		req := httptest.NewRequest("GET", "http://authlib/0f657aa8-bfbe-415d-b700-5750090d3af3/textures", nil)
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)
		result := w.Result()

		t.Equal(http.StatusOK, result.StatusCode)
		body, _ := io.ReadAll(result.Body)
		t.JSONEq(`{
			"SKIN": {"url": "https://example.com/skin.png", "digest": "deadbeef"},
			"CAPE": {"url": "https://example.com/cape.png"}
		}`, string(body))
	})

	t.Run("no textures", func() {
		profile := profiles.NewProfile(mockProfileUuid, "")
		t.ProfileResolver.On("Resolve", mock.Anything, profile).Once().Return(profile)
		t.TextureResolver.On("ResolveTextures", mock.Anything, profile).Once().Return(&textures.Textures{})

		req := httptest.NewRequest("GET", "http://authlib/0f657aa8-bfbe-415d-b700-5750090d3af3/textures", nil)
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)
		result := w.Result()

		t.Equal(http.StatusNoContent, result.StatusCode)
		body, _ := io.ReadAll(result.Body)
		t.Empty(body)
	})
}

func (t *ProfilesTestSuite) TestPostProfileTextures() {
	t.Run("resolve textures of the passed profile", func() {
		expectedProfile := profiles.NewProfile(mockProfileUuid, "mock_username")
		expectedProfile.SetProperty(profiles.Property{Name: profiles.TexturesProperty, Value: "bW9jawo=", Signature: "c2lnbmF0dXJl"})
		t.TextureResolver.On("ResolveTextures", mock.Anything, expectedProfile).Once().Return(&textures.Textures{
			Cape: &textures.Texture{Url: "https://example.com/cape.png"},
		})

		req := httptest.NewRequest("POST", "http://authlib/textures", strings.NewReader(`{
			"id": "0f657aa8bfbe415db7005750090d3af3",
			"name": "mock_username",
			"properties": [
				{"name": "textures", "value": "bW9jawo=", "signature": "c2lnbmF0dXJl"}
			]
		}`))
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)
		result := w.Result()

		t.Equal(http.StatusOK, result.StatusCode)
		body, _ := io.ReadAll(result.Body)
		t.JSONEq(`{"CAPE": {"url": "https://example.com/cape.png"}}`, string(body))
		t.ProfileResolver.AssertNotCalled(t.T(), "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("no textures", func() {
		t.TextureResolver.On("ResolveTextures", mock.Anything, profiles.NewProfile(uuid.Nil, "")).Once().Return(&textures.Textures{})

		req := httptest.NewRequest("POST", "http://authlib/textures", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)

		t.Equal(http.StatusNoContent, w.Result().StatusCode)
	})

	t.Run("handle malformed body", func() {
		req := httptest.NewRequest("POST", "http://authlib/textures", strings.NewReader("not a json"))
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)

		t.Equal(http.StatusBadRequest, w.Result().StatusCode)
	})

	t.Run("receive validation errors", func() {
		req := httptest.NewRequest("POST", "http://authlib/textures", strings.NewReader(`{
			"id": "not-a-uuid",
			"properties": [
				{"value": "mock"}
			]
		}`))
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)
		result := w.Result()

		t.Equal(http.StatusBadRequest, result.StatusCode)
		body, _ := io.ReadAll(result.Body)
		t.JSONEq(`{
			"errors": {
				"id": ["id must be a valid UUID"],
				"properties[0].name": ["properties[0].name is a required field"]
			}
		}`, string(body))
	})
}

func TestProfilesApi(t *testing.T) {
	suite.Run(t, new(ProfilesTestSuite))
}

func TestProfilesApi_PayloadFillsMissingKind(t *testing.T) {
	textureResolver, err := textures.NewResolver(profiles.Config{})
	require.NoError(t, err)
	app, err := NewProfilesApi(&ProfileResolverMock{}, textureResolver)
	require.NoError(t, err)

	payload := base64.StdEncoding.EncodeToString([]byte(`{
		"textures": {
			"SKIN": {"url": "https://payload.example.com/skin.png"},
			"CAPE": {"url": "https://payload.example.com/cape.png"}
		}
	}`))
	req := httptest.NewRequest("POST", "http://authlib/textures", strings.NewReader(`{
		"id": "0f657aa8bfbe415db7005750090d3af3",
		"name": "mock_username",
		"properties": [
			{"name": "skinURL", "value": "https://launcher.example.com/skin.png"},
			{"name": "skinDigest", "value": "deadbeef"},
			{"name": "textures", "value": "`+payload+`", "signature": "c2lnbmF0dXJl"}
		]
	}`))
	w := httptest.NewRecorder()

	app.Handler().ServeHTTP(w, req)
	result := w.Result()

	require.Equal(t, http.StatusOK, result.StatusCode)
	body, _ := io.ReadAll(result.Body)
	require.JSONEq(t, `{
		"SKIN": {"url": "https://launcher.example.com/skin.png", "digest": "deadbeef"},
		"CAPE": {"url": "https://payload.example.com/cape.png"}
	}`, string(body))
}
