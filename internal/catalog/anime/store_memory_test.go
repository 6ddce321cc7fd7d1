// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package anime_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/animeab/internal/catalog/anime"
)

func uploadRecord(t *testing.T, gateway *anime.MemoryGateway, key, fileName, content string) *anime.Anime {
	t.Helper()
	result := gateway.CreateAnime(context.Background(), &anime.Anime{
		Key:         key,
		Title:       key,
		CategoryKey: "shounen",
		Status:      anime.StatusOngoing,
		FileName:    &fileName,
	}, strings.NewReader(content))
	require.True(t, result.Success, result.Message)
	return result.Data
}

func openByURL(t *testing.T, gateway *anime.MemoryGateway, url string) (string, error) {
	t.Helper()
	image, err := gateway.OpenImage(context.Background(), strings.TrimPrefix(url, imageBaseURL))
	if err != nil {
		return "", err
	}
	return string(image.Content), nil
}

/*
TestBlobName_Layout keeps key, slot and file apart so hyphenated keys and file
names can not collide.
*/
func TestBlobName_Layout(t *testing.T) {
	tests := []struct {
		key  string
		slot anime.Slot
		file string
		want string
	}{
		{"naruto-shippuden", anime.SlotImage, "cover.jpg", "naruto-shippuden/image/cover.jpg"},
		{"naruto", anime.SlotImage, "shippuden-cover.jpg", "naruto/image/shippuden-cover.jpg"},
		{"naruto", anime.SlotBanner, "wide.png", "naruto/banner/wide.png"},
		{"naruto", anime.SlotImage, "../../etc/Passwd", "naruto/image/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, anime.BlobName(tt.key, tt.slot, tt.file))
		})
	}
}

/*
TestMemoryGateway_HyphenatedKeysKeepTheirImages stores two records whose
key and file name join to the same hyphenated string.
*/
func TestMemoryGateway_HyphenatedKeysKeepTheirImages(t *testing.T) {
	gateway := anime.NewMemoryGateway(imageBaseURL)

	shippuden := uploadRecord(t, gateway, "naruto-shippuden", "cover.jpg", "AAAA")
	naruto := uploadRecord(t, gateway, "naruto", "shippuden-cover.jpg", "BBBB")
	require.NotEqual(t, shippuden.Image, naruto.Image)

	content, err := openByURL(t, gateway, shippuden.Image)
	require.NoError(t, err)
	assert.Equal(t, "AAAA", content)

	content, err = openByURL(t, gateway, naruto.Image)
	require.NoError(t, err)
	assert.Equal(t, "BBBB", content)

	require.True(t, gateway.DeleteAnime(context.Background(), "naruto").Success)

	content, err = openByURL(t, gateway, shippuden.Image)
	require.NoError(t, err)
	assert.Equal(t, "AAAA", content)

	_, err = openByURL(t, gateway, naruto.Image)
	assert.Error(t, err)
}
