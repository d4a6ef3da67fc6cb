package renderer

// ghostShaderSource draws asset surfaces. Group 0 holds the per-viewport transform, group 1 the
// per-material color. Normals come from screen-space derivatives because surfaces carry
// positions only.
const ghostShaderSource = `
struct Transform {
    mvp: mat4x4<f32>,
};

struct MaterialColor {
    color: vec4<f32>,
};

@group(0) @binding(0) var<uniform> transform: Transform;
@group(1) @binding(0) var<uniform> material: MaterialColor;

struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) local: vec3<f32>,
};

@vertex
fn vs_main(@location(0) position: vec3<f32>) -> VertexOut {
    var out: VertexOut;
    out.position = transform.mvp * vec4<f32>(position, 1.0);
    out.local = position;
    return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    let normal = normalize(cross(dpdx(in.local), dpdy(in.local)));
    let light = normalize(vec3<f32>(0.4, 0.8, 0.6));
    let diffuse = abs(dot(normal, light));
    let shade = 0.45 + 0.55 * diffuse;
    return vec4<f32>(material.color.rgb * shade, material.color.a);
}
`

// spriteShaderSource draws the particle overlay as instanced quads in pixel space.
const spriteShaderSource = `
struct Screen {
    size: vec2<f32>,
    _pad: vec2<f32>,
    color: vec4<f32>,
};

@group(0) @binding(0) var<uniform> screen: Screen;

struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) opacity: f32,
};

@vertex
fn vs_main(@builtin(vertex_index) vi: u32, @location(0) sprite: vec4<f32>) -> VertexOut {
    var corners = array<vec2<f32>, 6>(
        vec2<f32>(0.0, 0.0), vec2<f32>(1.0, 0.0), vec2<f32>(0.0, 1.0),
        vec2<f32>(0.0, 1.0), vec2<f32>(1.0, 0.0), vec2<f32>(1.0, 1.0),
    );
    let corner = corners[vi];
    let pixel = sprite.xy + corner * sprite.z;
    let ndc = vec2<f32>(pixel.x / screen.size.x * 2.0 - 1.0, 1.0 - pixel.y / screen.size.y * 2.0);

    var out: VertexOut;
    out.position = vec4<f32>(ndc, 0.0, 1.0);
    out.uv = corner * 2.0 - vec2<f32>(1.0, 1.0);
    out.opacity = sprite.w;
    return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    let d = length(in.uv);
    if (d > 1.0) {
        discard;
    }
    let glow = 1.0 - smoothstep(0.6, 1.0, d);
    return vec4<f32>(screen.color.rgb, screen.color.a * in.opacity * glow);
}
`
