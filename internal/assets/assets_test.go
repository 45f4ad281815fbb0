package assets

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/pyramid-scene/internal/engine/animation"
	"github.com/Faultbox/pyramid-scene/internal/engine/scene"
)

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
}

func TestCacheStats(t *testing.T) {
	c := NewCache()
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", []byte{1})
	data, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte{1}, data)
	assert.Equal(t, 1, c.Len())

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	c.Clear()
	hits, misses = c.Stats()
	assert.Zero(t, hits+misses)
	assert.Zero(t, c.Len())
}

func TestManagerResolvePriority(t *testing.T) {
	low, high := t.TempDir(), t.TempDir()
	writeFile(t, low, "tex/a.txt", []byte("low"))
	writeFile(t, high, "tex/a.txt", []byte("high"))
	writeFile(t, low, "tex/b.txt", []byte("only low"))

	m := NewManager(low)
	require.NoError(t, m.AddSource(high))

	data, err := m.Load("tex/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "high", string(data), "last added source wins")

	data, err = m.Load("tex/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "only low", string(data))

	// Second read is served from the cache.
	_, err = m.Load("tex/a.txt")
	require.NoError(t, err)
	hits, _ := m.Cache().Stats()
	assert.Equal(t, 1, hits)
}

func TestManagerNotFound(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.Load("missing.hdr")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = m.Resolve(filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Error(t, m.AddSource(filepath.Join(t.TempDir(), "nope")))
}

func tinyHDR() []byte {
	var buf bytes.Buffer
	buf.WriteString("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 1 +X 2\n")
	buf.Write([]byte{128, 128, 128, 129, 0, 0, 0, 0})
	return buf.Bytes()
}

func TestLoadEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "textures/sky.hdr", tinyHDR())
	writeFile(t, dir, "textures/broken.hdr", []byte("not an image"))

	m := NewManager(dir)
	env, err := m.LoadEnvironment("textures/sky.hdr")
	require.NoError(t, err)
	assert.Equal(t, 2, env.Width)
	assert.Equal(t, 1, env.Height)
	assert.InDelta(t, 256.0/255.0, env.At(0, 0)[0], 1e-6)

	_, err = m.LoadEnvironment("textures/broken.hdr")
	assert.ErrorContains(t, err, "textures/broken.hdr")
}

// triangleGLTF returns a document with a scaled parent, one triangle child
// and a translation animation on the child.
func triangleGLTF(t *testing.T) []byte {
	t.Helper()
	var bin bytes.Buffer
	floats := []float32{
		0, 0, 0, 1, 0, 0, 0, 1, 0, // positions
		0, 1, // times
		1, 0, 0, 3, 0, 0, // translations
	}
	require.NoError(t, binary.Write(&bin, binary.LittleEndian, floats))
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(bin.Bytes())

	return []byte(fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [
    {"name": "root", "children": [1], "scale": [2, 2, 2]},
    {"name": "tri", "mesh": 0, "translation": [1, 0, 0]}
  ],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "material": 0}]}],
  "materials": [{
    "name": "paint",
    "pbrMetallicRoughness": {"baseColorFactor": [0.5, 0.25, 1, 1], "metallicFactor": 0.2, "roughnessFactor": 0.7}
  }],
  "animations": [{
    "name": "slide",
    "channels": [{"sampler": 0, "target": {"node": 1, "path": "translation"}}],
    "samplers": [{"input": 1, "output": 2, "interpolation": "LINEAR"}]
  }],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5126, "count": 2, "type": "SCALAR", "min": [0], "max": [1]},
    {"bufferView": 2, "componentType": 5126, "count": 2, "type": "VEC3"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 8},
    {"buffer": 0, "byteOffset": 44, "byteLength": 24}
  ],
  "buffers": [{"byteLength": %d, "uri": %q}]
}`, bin.Len(), uri))
}

func TestLoadModel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "models/tri.gltf", triangleGLTF(t))

	m := NewManager(dir)
	model, err := m.LoadModel("models/tri.gltf")
	require.NoError(t, err)
	assert.Equal(t, "tri.gltf", model.Root.Name)

	tri := model.Root.FindByName("tri")
	require.NotNil(t, tri)
	require.NotNil(t, tri.Mesh)
	assert.Equal(t, "root", tri.Parent().Name)
	assert.Len(t, tri.Mesh.Geometry.Positions, 3)
	assert.Len(t, tri.Mesh.Geometry.Normals, 3, "missing normals are computed")

	mat, ok := tri.Mesh.Material.(*scene.StandardMaterial)
	require.True(t, ok)
	assert.Equal(t, "paint", mat.Name)
	assert.InDelta(t, 0.25, mat.Color.G, 1e-6)
	assert.InDelta(t, 0.2, mat.Metalness, 1e-6)
	assert.InDelta(t, 0.7, mat.Roughness, 1e-6)

	box := scene.BoxFromObject(model.Root)
	assert.InDelta(t, 2, box.Min.X(), 1e-5)
	assert.InDelta(t, 4, box.Max.X(), 1e-5)
	assert.InDelta(t, 2, box.Max.Y(), 1e-5)

	require.Len(t, model.Clips, 1)
	clip := model.Clips[0]
	assert.Equal(t, "slide", clip.Name)
	assert.Equal(t, float32(1), clip.Duration)
	require.Len(t, clip.Tracks, 1)
	assert.Same(t, tri, clip.Tracks[0].Target)
	assert.Equal(t, animation.PathTranslation, clip.Tracks[0].Path)

	mixer := animation.NewMixer(model.Root)
	mixer.ClipAction(clip).Play()
	mixer.Update(0.5)
	assert.InDelta(t, 2, tri.Position.X(), 1e-5)
}

func TestLoadModelErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.gltf", []byte("{not json"))

	m := NewManager(dir)
	_, err := m.LoadModel("missing.gltf")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = m.LoadModel("bad.gltf")
	assert.ErrorContains(t, err, "bad.gltf")
}

func TestDecompose(t *testing.T) {
	rot := mgl32.QuatRotate(0.5, mgl32.Vec3{0, 1, 0})
	m := mgl32.Translate3D(1, 2, 3).Mul4(rot.Mat4()).Mul4(mgl32.Scale3D(2, 3, 4))

	pos, q, s := decompose(m)
	assert.True(t, pos.ApproxEqual(mgl32.Vec3{1, 2, 3}))
	assert.True(t, s.ApproxEqualThreshold(mgl32.Vec3{2, 3, 4}, 1e-5))
	assert.True(t, q.ApproxEqualThreshold(rot, 1e-5) || q.ApproxEqualThreshold(rot.Scale(-1), 1e-5))
}

// gltfDoc wraps raw buffer bytes as a data URI and fills it into body,
// which must end with a "buffers" entry taking the length and URI.
func gltfDoc(bin []byte, body string) []byte {
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(bin)
	return []byte(fmt.Sprintf(body, len(bin), uri))
}

// sharedMaterialGLTF has two nodes instancing mesh 0, and a node with mesh 1
// whose two primitives both use material 0.
func sharedMaterialGLTF(t *testing.T) []byte {
	t.Helper()
	var bin bytes.Buffer
	require.NoError(t, binary.Write(&bin, binary.LittleEndian, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}))

	return gltfDoc(bin.Bytes(), `{
  "asset": {"version": "2.0"},
  "scenes": [{"nodes": [0, 1, 2]}],
  "nodes": [
    {"name": "a", "mesh": 0},
    {"name": "b", "mesh": 0, "translation": [3, 0, 0]},
    {"name": "pair", "mesh": 1}
  ],
  "meshes": [
    {"primitives": [{"attributes": {"POSITION": 0}, "material": 0}]},
    {"primitives": [
      {"attributes": {"POSITION": 0}, "material": 0},
      {"attributes": {"POSITION": 0}, "material": 0}
    ]}
  ],
  "materials": [{"name": "paint", "pbrMetallicRoughness": {"baseColorFactor": [0.5, 0.25, 1, 1]}}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]}
  ],
  "bufferViews": [{"buffer": 0, "byteOffset": 0, "byteLength": 36}],
  "buffers": [{"byteLength": %d, "uri": %q}]
}`)
}

func TestLoadModelCopiesSharedMaterials(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shared.gltf", sharedMaterialGLTF(t))

	model, err := NewManager(dir).LoadModel("shared.gltf")
	require.NoError(t, err)

	paint := scene.Color{R: 0.5, G: 0.25, B: 1}
	var mats []*scene.StandardMaterial
	for _, name := range []string{"a", "b", "pair_0", "pair_1"} {
		o := model.Root.FindByName(name)
		require.NotNil(t, o, name)
		require.NotNil(t, o.Mesh, name)
		mat, ok := o.Mesh.Material.(*scene.StandardMaterial)
		require.True(t, ok, name)
		assert.Equal(t, paint, mat.Color, name)
		mats = append(mats, mat)
	}
	assert.NotSame(t, mats[0], mats[1])
	assert.NotSame(t, mats[2], mats[3])

	mats[0].SetBaseColor(scene.Red)
	mats[2].SetBaseColor(scene.Green)
	assert.Equal(t, paint, mats[1].Color)
	assert.Equal(t, paint, mats[3].Color)
}

// skinnedGLTF has a triangle fully weighted to one joint whose inverse bind
// matrix translates by -1 along X.
func skinnedGLTF(t *testing.T) []byte {
	t.Helper()
	var bin bytes.Buffer
	write := func(v any) { require.NoError(t, binary.Write(&bin, binary.LittleEndian, v)) }
	write([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})                       // positions, 36 bytes
	write([]uint16{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})               // joints, 24 bytes
	write([]float32{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0})              // weights, 48 bytes
	write([]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, -1, 0, 0, 1}) // inverse bind, 64 bytes

	return gltfDoc(bin.Bytes(), `{
  "asset": {"version": "2.0"},
  "scenes": [{"nodes": [0, 1]}],
  "nodes": [
    {"name": "body", "mesh": 0, "skin": 0},
    {"name": "bone"}
  ],
  "skins": [{"joints": [1], "inverseBindMatrices": 3}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0, "JOINTS_0": 1, "WEIGHTS_0": 2}}]}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "VEC4"},
    {"bufferView": 2, "componentType": 5126, "count": 3, "type": "VEC4"},
    {"bufferView": 3, "componentType": 5126, "count": 1, "type": "MAT4"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 24},
    {"buffer": 0, "byteOffset": 60, "byteLength": 48},
    {"buffer": 0, "byteOffset": 108, "byteLength": 64}
  ],
  "buffers": [{"byteLength": %d, "uri": %q}]
}`)
}

func TestLoadModelSkin(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "skinned.gltf", skinnedGLTF(t))

	model, err := NewManager(dir).LoadModel("skinned.gltf")
	require.NoError(t, err)

	body := model.Root.FindByName("body")
	bone := model.Root.FindByName("bone")
	require.NotNil(t, body)
	require.NotNil(t, bone)
	require.NotNil(t, body.Mesh)

	g := body.Mesh.Geometry
	assert.True(t, g.Skinned())
	assert.Equal(t, [][4]uint16{{}, {}, {}}, g.Joints)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 0}, g.Weights[2])

	skin := body.Mesh.Skin
	require.NotNil(t, skin)
	require.Len(t, skin.Joints, 1)
	assert.Same(t, bone, skin.Joints[0])
	require.Len(t, skin.InverseBind, 1)
	assert.Equal(t, mgl32.Translate3D(-1, 0, 0), skin.InverseBind[0])

	box := scene.BoxFromObject(model.Root)
	assert.InDelta(t, -1, box.Min.X(), 1e-5)
	assert.InDelta(t, 0, box.Max.X(), 1e-5)

	bone.Position = mgl32.Vec3{5, 2, 0}
	box = scene.BoxFromObject(model.Root)
	assert.InDelta(t, 4, box.Min.X(), 1e-5)
	assert.InDelta(t, 5, box.Max.X(), 1e-5)
	assert.InDelta(t, 2, box.Min.Y(), 1e-5)
	assert.InDelta(t, 3, box.Max.Y(), 1e-5)
}

func TestLoaderDeliversResults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sky.hdr", tinyHDR())
	writeFile(t, dir, "tri.gltf", triangleGLTF(t))

	l := NewLoader(NewManager(dir), 2)
	defer l.Close()

	l.LoadEnvironment("sky.hdr")
	l.LoadModel("tri.gltf")
	l.LoadModel("missing.gltf")

	got := map[string]Result{}
	timeout := time.After(5 * time.Second)
	for len(got) < 3 {
		select {
		case r := <-l.Results():
			got[r.Name] = r
		case <-timeout:
			t.Fatalf("timed out, got %d results", len(got))
		}
	}

	assert.Equal(t, KindEnvironment, got["sky.hdr"].Kind)
	assert.NoError(t, got["sky.hdr"].Err)
	assert.NotNil(t, got["sky.hdr"].Environment)

	assert.Equal(t, KindModel, got["tri.gltf"].Kind)
	require.NoError(t, got["tri.gltf"].Err)
	assert.NotNil(t, got["tri.gltf"].Model.Root)

	assert.True(t, errors.Is(got["missing.gltf"].Err, ErrNotFound))
	assert.Equal(t, "model", KindModel.String())
}
