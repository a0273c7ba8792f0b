// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package catalog

import (
	"strings"

	"github.com/dentuss/Bazinga-Comics/pkg/pointer"
)

// absoluteSchemes pass through ResolveImageURL untouched.
var absoluteSchemes = []string{"http://", "https://", "data:", "blob:"}

// ResolveImageURL turns a stored image value into a loadable URL.
//
// Absolute values (http, https, data, blob) are returned unchanged. Relative
// values are joined to baseURL after stripping one leading slash. A blank
// image resolves to "".
func ResolveImageURL(baseURL, image string) string {
	image = strings.TrimSpace(image)
	if image == "" {
		return ""
	}

	lower := strings.ToLower(image)
	for _, scheme := range absoluteSchemes {
		if strings.HasPrefix(lower, scheme) {
			return image
		}
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL + strings.TrimPrefix(image, "/")
}

// ImageURL resolves the comic's cover against baseURL.
func (c Comic) ImageURL(baseURL string) string {
	return ResolveImageURL(baseURL, pointer.Val(c.Image))
}
