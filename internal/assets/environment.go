package assets

import (
	"fmt"

	"github.com/Faultbox/pyramid-scene/internal/engine/texture"
)

// LoadEnvironment decodes an equirectangular panorama. Radiance .hdr files
// keep their full range; other formats are linearized from sRGB.
func (m *Manager) LoadEnvironment(name string) (*texture.HDR, error) {
	data, err := m.Load(name)
	if err != nil {
		return nil, err
	}
	img, err := texture.Decode(name, data)
	if err != nil {
		return nil, fmt.Errorf("decoding environment %s: %w", name, err)
	}
	return img, nil
}
