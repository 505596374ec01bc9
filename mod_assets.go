package gekko

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"os"
)

// AssetId is an opaque, uuid-backed handle into the AssetServer's asset
// maps. It doubles as the payload carried by a shader-input descriptor
// property (see encoding.TextureHandle) once a texture asset is loaded -
// the encoding package never depends on AssetId itself, callers convert at
// the boundary.
type AssetId string

type AssetServer struct {
	meshes    map[AssetId]MeshAsset
	materials map[AssetId]MaterialAsset
	textures  map[AssetId]TextureAsset
}

type AssetServerModule struct{}

type Mesh struct {
	assetId AssetId
}

type Material struct {
	assetId AssetId
}

// Texture is a loaded texture asset handle, convertible to a descriptor
// property's encoding.TextureHandle at the call site via AssetId().
type Texture struct {
	assetId AssetId
}

func (t Texture) AssetId() AssetId { return t.assetId }

type MeshAsset struct {
	version  uint
	vertices []mgl32.Vec3
	indexes  []uint16
}

type MaterialAsset struct {
	version       uint
	shaderName    string
	shaderListing string
}

type TextureAsset struct {
	version   uint
	path      string
	width     uint32
	height    uint32
	depth     uint32
	dimension wgpu.TextureDimension
	format    wgpu.TextureFormat
	texels    []byte
}

func (server AssetServer) LoadMesh(vertices []mgl32.Vec3, indexes []uint16) Mesh {
	id := makeAssetId()

	server.meshes[id] = MeshAsset{
		0,
		vertices,
		indexes,
	}

	return Mesh{
		assetId: id,
	}
}

func (server AssetServer) LoadMaterial(filename string) Material {
	shaderData, err := os.ReadFile(filename)
	if err != nil {
		panic(err)
	}

	id := makeAssetId()

	server.materials[id] = MaterialAsset{
		version:       0,
		shaderName:    filename,
		shaderListing: string(shaderData),
	}

	return Material{
		assetId: id,
	}
}

// LoadTexture reads raw RGBA8 texel data from disk and registers it under a
// fresh AssetId. Decoding PNG/JPEG/etc. container formats is out of scope -
// callers supply already-decoded texels and dimensions, matching the
// teacher's own assumption that AssetServer deals in GPU-ready bytes, not
// image containers. The encoder core never calls this itself - a component's
// fallback or a loading system populates a Texture, and an encoder's Encode
// method turns its AssetId into an encoding.TextureHandle when writing
// descriptors.
func (server AssetServer) LoadTexture(path string, width, height uint32) Texture {
	texels, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	id := makeAssetId()

	server.textures[id] = TextureAsset{
		version:   0,
		path:      path,
		width:     width,
		height:    height,
		depth:     1,
		dimension: wgpu.TextureDimension2D,
		format:    wgpu.TextureFormatRGBA8Unorm,
		texels:    texels,
	}

	return Texture{assetId: id}
}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	app.addResources(&AssetServer{
		meshes:    make(map[AssetId]MeshAsset),
		materials: make(map[AssetId]MaterialAsset),
		textures:  make(map[AssetId]TextureAsset),
	})
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
