package compositor

import "testing"

func TestRequests(t *testing.T) {
	r := NewRequests()
	if _, ok := r.take(); ok {
		t.Fatal("new request set has a pending reload")
	}

	r.Reload()
	r.Reload()
	select {
	case <-r.Wake():
	default:
		t.Fatal("Reload did not signal Wake")
	}
	path, ok := r.take()
	if !ok || path != "" {
		t.Fatalf("take() = %q, %v; want plain reload", path, ok)
	}

	r.SelectShader("/a.frag")
	r.SelectShader("/b.frag")
	path, ok = r.take()
	if !ok || path != "/b.frag" {
		t.Fatalf("take() = %q, %v; want latest selection", path, ok)
	}
	if _, ok := r.take(); ok {
		t.Fatal("take() did not clear the request")
	}

	r.Reload()
	path, ok = r.take()
	if !ok || path != "/b.frag" {
		t.Fatalf("take() after selection = %q, %v; want reload of the selected shader", path, ok)
	}
}
