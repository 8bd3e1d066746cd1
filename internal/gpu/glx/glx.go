//go:build linux && cgo

// Package glx implements gpu.Device with an OpenGL 3.3 context created
// through GLX on the composite overlay window. Window pixmaps are sampled
// in place through GLX_EXT_texture_from_pixmap.
package glx

/*
#cgo LDFLAGS: -lGL -lX11
#include <stdlib.h>
#include <X11/Xlib.h>
#include <X11/Xutil.h>
#include <GL/glx.h>
#include <GL/glxext.h>

#define MAX_TFP_DEPTH 32

static int last_error;

static int record_error(Display *dpy, XErrorEvent *ev) {
	(void)dpy;
	last_error = ev->error_code;
	return 0;
}

static void install_error_handler(void) {
	XSetErrorHandler(record_error);
}

static int take_last_error(void) {
	int e = last_error;
	last_error = 0;
	return e;
}

static GLXFBConfig choose_window_config(Display *dpy, int screen) {
	int attrs[] = {
		GLX_DRAWABLE_TYPE, GLX_WINDOW_BIT,
		GLX_RENDER_TYPE,   GLX_RGBA_BIT,
		GLX_DOUBLEBUFFER,  True,
		GLX_RED_SIZE,      8,
		GLX_GREEN_SIZE,    8,
		GLX_BLUE_SIZE,     8,
		GLX_ALPHA_SIZE,    8,
		None
	};
	int n = 0;
	GLXFBConfig *configs = glXChooseFBConfig(dpy, screen, attrs, &n);
	if (!configs) return NULL;
	GLXFBConfig cfg = n > 0 ? configs[0] : NULL;
	XFree(configs);
	return cfg;
}

// Keeps the first single-buffered, pixmap-capable config per visual depth.
// fmt[depth] is 1 for RGB binding, 2 for RGBA.
static int find_tfp_configs(Display *dpy, int screen, GLXFBConfig *cfg, int *fmt) {
	int n = 0, found = 0;
	GLXFBConfig *all = glXGetFBConfigs(dpy, screen, &n);
	if (!all) return 0;

	for (int i = 0; i < n; i++) {
		int drawable = 0, targets = 0, dbl = 0, rgb = 0, rgba = 0;

		glXGetFBConfigAttrib(dpy, all[i], GLX_DRAWABLE_TYPE, &drawable);
		if (!(drawable & GLX_PIXMAP_BIT)) continue;
		glXGetFBConfigAttrib(dpy, all[i], GLX_BIND_TO_TEXTURE_TARGETS_EXT, &targets);
		if (!(targets & GLX_TEXTURE_2D_BIT_EXT)) continue;
		glXGetFBConfigAttrib(dpy, all[i], GLX_DOUBLEBUFFER, &dbl);
		if (dbl) continue;
		glXGetFBConfigAttrib(dpy, all[i], GLX_BIND_TO_TEXTURE_RGB_EXT, &rgb);
		glXGetFBConfigAttrib(dpy, all[i], GLX_BIND_TO_TEXTURE_RGBA_EXT, &rgba);
		if (!rgb && !rgba) continue;

		XVisualInfo *vi = glXGetVisualFromFBConfig(dpy, all[i]);
		if (!vi) continue;
		int depth = vi->depth;
		XFree(vi);

		if (depth <= 0 || depth > MAX_TFP_DEPTH || fmt[depth]) continue;
		cfg[depth] = all[i];
		fmt[depth] = rgba ? 2 : 1;
		found++;
	}
	XFree(all);
	return found;
}

static PFNGLXBINDTEXIMAGEEXTPROC bind_tex_image_ext;
static PFNGLXRELEASETEXIMAGEEXTPROC release_tex_image_ext;

static int load_tfp(void) {
	bind_tex_image_ext = (PFNGLXBINDTEXIMAGEEXTPROC)
		glXGetProcAddress((const GLubyte *)"glXBindTexImageEXT");
	release_tex_image_ext = (PFNGLXRELEASETEXIMAGEEXTPROC)
		glXGetProcAddress((const GLubyte *)"glXReleaseTexImageEXT");
	return bind_tex_image_ext && release_tex_image_ext;
}

static void bind_tex_image(Display *dpy, GLXPixmap p) {
	bind_tex_image_ext(dpy, p, GLX_FRONT_LEFT_EXT, NULL);
}

static void release_tex_image(Display *dpy, GLXPixmap p) {
	release_tex_image_ext(dpy, p, GLX_FRONT_LEFT_EXT);
}

static int swap_interval(Display *dpy, GLXDrawable d, int interval) {
	PFNGLXSWAPINTERVALEXTPROC f = (PFNGLXSWAPINTERVALEXTPROC)
		glXGetProcAddress((const GLubyte *)"glXSwapIntervalEXT");
	if (!f) return 0;
	f(dpy, d, interval);
	return 1;
}

static GLXPixmap create_tfp_pixmap(Display *dpy, GLXFBConfig cfg, Pixmap p, int rgba) {
	int attrs[] = {
		GLX_TEXTURE_TARGET_EXT, GLX_TEXTURE_2D_EXT,
		GLX_TEXTURE_FORMAT_EXT, rgba ? GLX_TEXTURE_FORMAT_RGBA_EXT : GLX_TEXTURE_FORMAT_RGB_EXT,
		None
	};
	return glXCreatePixmap(dpy, cfg, p, attrs);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/xatuke/screenshader/internal/gpu"
)

const (
	formatRGB  = 1
	formatRGBA = 2
)

// display is an Xlib connection carrying the GLX context. It is separate
// from the compositor's protocol connection; resource ids are server-wide so
// pixmaps named there are usable here.
type display struct {
	dpy     *C.Display
	screen  C.int
	config  C.GLXFBConfig
	ctx     C.GLXContext
	win     C.GLXWindow
	configs [gpu.MaxDepth + 1]C.GLXFBConfig
}

func openDisplay(name string, screen int) (*display, error) {
	var cname *C.char
	if name != "" {
		cname = C.CString(name)
		defer C.free(unsafe.Pointer(cname))
	}
	dpy := C.XOpenDisplay(cname)
	if dpy == nil {
		return nil, fmt.Errorf("failed to open display %q for GLX", name)
	}
	C.install_error_handler()
	return &display{dpy: dpy, screen: C.int(screen)}, nil
}

// textureFormats enumerates the configs usable for texture_from_pixmap.
func (d *display) textureFormats() gpu.DepthFormatTable {
	var fmts [gpu.MaxDepth + 1]C.int
	C.find_tfp_configs(d.dpy, d.screen, &d.configs[0], &fmts[0])

	var table gpu.DepthFormatTable
	for depth, f := range fmts {
		if f == 0 {
			continue
		}
		format := gpu.FormatRGB
		if f == formatRGBA {
			format = gpu.FormatRGBA
		}
		table[depth] = gpu.DepthFormat{Supported: true, Format: format, Config: depth}
	}
	return table
}

// bindWindow creates a context rendering to the overlay window and makes it current.
func (d *display) bindWindow(overlay uint32) error {
	d.config = C.choose_window_config(d.dpy, d.screen)
	if d.config == nil {
		return errors.New("no suitable GLX framebuffer config")
	}
	d.ctx = C.glXCreateNewContext(d.dpy, d.config, C.GLX_RGBA_TYPE, nil, C.True)
	if d.ctx == nil {
		return errors.New("failed to create GLX context")
	}
	d.win = C.glXCreateWindow(d.dpy, d.config, C.Window(overlay), nil)
	if d.win == 0 {
		return errors.New("failed to create GLX window on overlay")
	}
	if C.glXMakeContextCurrent(d.dpy, C.GLXDrawable(d.win), C.GLXDrawable(d.win), d.ctx) == 0 {
		return errors.New("failed to make GLX context current")
	}
	if C.load_tfp() == 0 {
		return errors.New("GLX_EXT_texture_from_pixmap not available")
	}
	return nil
}

func (d *display) setSwapInterval(interval int) bool {
	return C.swap_interval(d.dpy, C.GLXDrawable(d.win), C.int(interval)) != 0
}

func (d *display) createPixmap(pixmap uint32, f gpu.DepthFormat) (uint64, error) {
	cfg := d.configs[f.Config]
	if cfg == nil {
		return 0, fmt.Errorf("no texture config for depth %d", f.Config)
	}
	rgba := C.int(0)
	if f.Format == gpu.FormatRGBA {
		rgba = 1
	}

	C.take_last_error()
	gp := C.create_tfp_pixmap(d.dpy, cfg, C.Pixmap(pixmap), rgba)
	C.XSync(d.dpy, C.False)
	if code := C.take_last_error(); code != 0 || gp == 0 {
		if gp != 0 {
			C.glXDestroyPixmap(d.dpy, gp)
		}
		return 0, fmt.Errorf("glXCreatePixmap failed (X error %d)", int(code))
	}
	return uint64(gp), nil
}

func (d *display) destroyPixmap(gp uint64) {
	C.glXDestroyPixmap(d.dpy, C.GLXPixmap(gp))
}

func (d *display) bindTexImage(gp uint64) {
	C.bind_tex_image(d.dpy, C.GLXPixmap(gp))
}

func (d *display) releaseTexImage(gp uint64) {
	C.release_tex_image(d.dpy, C.GLXPixmap(gp))
}

func (d *display) swapBuffers() {
	C.glXSwapBuffers(d.dpy, C.GLXDrawable(d.win))
}

func (d *display) close() {
	if d.dpy == nil {
		return
	}
	C.glXMakeContextCurrent(d.dpy, 0, 0, nil)
	if d.win != 0 {
		C.glXDestroyWindow(d.dpy, d.win)
		d.win = 0
	}
	if d.ctx != nil {
		C.glXDestroyContext(d.dpy, d.ctx)
		d.ctx = nil
	}
	C.XCloseDisplay(d.dpy)
	d.dpy = nil
}
