package profile

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// DecodeImageData decodes a data URL ("data:image/png;base64,...") or a bare
// base64 string into raw bytes and its declared content type.
func DecodeImageData(data string) ([]byte, string, error) {
	contentType := ""
	payload := strings.TrimSpace(data)
	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, "", fmt.Errorf("unsupported data url")
		}
		contentType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		payload = body
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("invalid base64 image data: %w", err)
		}
	}
	return raw, contentType, nil
}

func checkPhoto(path string, photo PhotoInput, lim Limits, v *Violations) {
	w, h := photo.Dimensions.Width, photo.Dimensions.Height
	dimsOK := true
	if !w.Set || w.Invalid || w.Value <= 0 {
		v.Add(path+".dimensions.width", "Width is required")
		dimsOK = false
	}
	if !h.Set || h.Invalid || h.Value <= 0 {
		v.Add(path+".dimensions.height", "Height is required")
		dimsOK = false
	}

	if strings.TrimSpace(photo.Data) == "" {
		// a reference to an already stored photo needs no payload
		if photo.ID == "" {
			v.Add(path+".data", "Data is required")
		}
		return
	}
	raw, _, err := DecodeImageData(photo.Data)
	if err != nil {
		v.Add(path+".data", "Invalid image data")
		return
	}
	if len(raw) > lim.MaxPhotoBytes {
		v.Add(path+".data", fmt.Sprintf("Image exceeds %d bytes", lim.MaxPhotoBytes))
		return
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		v.Add(path+".data", "Invalid image file")
		return
	}
	if dimsOK && (cfg.Width != w.Value || cfg.Height != h.Value) {
		v.Add(path+".dimensions", fmt.Sprintf("Declared %dx%d does not match image %dx%d",
			w.Value, h.Value, cfg.Width, cfg.Height))
	}
}
