package winrt

import (
	"errors"
	"strings"
	"testing"
	"unsafe"
)

type fakeUnknown struct {
	ptr unsafe.Pointer
}

var iidFake = MustParseGUID("00000000-0000-0000-C000-000000000046")

func (fakeUnknown) IID() *GUID                             { return &iidFake }
func (fakeUnknown) FromRaw(raw unsafe.Pointer) fakeUnknown { return fakeUnknown{ptr: raw} }

type color int32

func (c color) Valid() bool { return c >= 0 && c <= 2 }

func TestHRESULT(t *testing.T) {
	if S_OK.Err() != nil || S_FALSE.Err() != nil {
		t.Error("success codes should map to nil")
	}
	err := E_NOINTERFACE.Err()
	if err == nil {
		t.Fatal("E_NOINTERFACE should fail")
	}
	if !strings.Contains(err.Error(), "0x80004002") {
		t.Errorf("error text = %q", err.Error())
	}
	if !errors.Is(err, E_NOINTERFACE.Err()) {
		t.Error("errors.Is should match identical codes")
	}
	if errors.Is(err, E_FAIL.Err()) {
		t.Error("errors.Is should not match different codes")
	}
	if HRESULT(-0x7ff8fffb).Facility() != facilityWin32 {
		t.Errorf("facility = %d, want %d", HRESULT(-0x7ff8fffb).Facility(), facilityWin32)
	}
}

func TestNTSTATUS(t *testing.T) {
	if NTSTATUS(0).Err() != nil {
		t.Error("STATUS_SUCCESS should map to nil")
	}
	err := NTSTATUS(-0x3fffffff).Err()
	var e *Error
	if !errors.As(err, &e) || e.Family != "NTSTATUS" {
		t.Errorf("err = %v, want NTSTATUS *Error", err)
	}
}

func TestGUIDRoundTrip(t *testing.T) {
	g, err := ParseGUID("{00000000-0000-0000-c000-000000000046}")
	if err != nil {
		t.Fatalf("ParseGUID: %v", err)
	}
	if g.Data1 != 0 || g.Data4[0] != 0xC0 || g.Data4[7] != 0x46 {
		t.Errorf("parsed %+v", g)
	}
	if got := g.String(); got != "{00000000-0000-0000-C000-000000000046}" {
		t.Errorf("String() = %q", got)
	}
	if _, err := ParseGUID("not-a-guid"); err == nil {
		t.Error("expected error for malformed GUID")
	}
}

func TestAndSome(t *testing.T) {
	var x int
	raw := unsafe.Pointer(&x)

	v, err := AndSome[fakeUnknown](S_OK, raw)
	if err != nil || v.ptr != raw {
		t.Errorf("AndSome success = %v, %v", v, err)
	}

	_, err = AndSome[fakeUnknown](S_OK, nil)
	if !errors.Is(err, ErrNoValue) {
		t.Errorf("empty slot on success should be ErrNoValue, got %v", err)
	}

	_, err = AndSome[fakeUnknown](E_NOINTERFACE, raw)
	if !errors.Is(err, E_NOINTERFACE.Err()) {
		t.Errorf("failure should surface the status, got %v", err)
	}
}

func TestStore(t *testing.T) {
	var x, y int
	prev := fakeUnknown{ptr: unsafe.Pointer(&x)}

	slot := prev
	if err := Store(S_OK, nil, &slot); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if slot != prev {
		t.Error("slot should keep its value when nothing is produced")
	}

	if err := Store(S_OK, unsafe.Pointer(&y), &slot); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if slot.ptr != unsafe.Pointer(&y) {
		t.Error("slot should be overwritten with the produced value")
	}

	if err := Store(E_FAIL, unsafe.Pointer(&x), &slot); err == nil {
		t.Error("failure status should be returned")
	}
	if slot.ptr != unsafe.Pointer(&y) {
		t.Error("slot should be untouched on failure")
	}
}

func TestIIDOf(t *testing.T) {
	if IIDOf[fakeUnknown]() != &iidFake {
		t.Error("IIDOf should use the zero value's IID")
	}
}

func TestFromABI(t *testing.T) {
	v, err := FromABI(S_OK, color(2))
	if err != nil || v != 2 {
		t.Errorf("FromABI legal = %v, %v", v, err)
	}

	_, err = FromABI(S_OK, color(7))
	var ce *ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("illegal bit pattern should be a ConversionError, got %v", err)
	}

	n, err := FromABI(S_OK, uint32(0xffffffff))
	if err != nil || n != 0xffffffff {
		t.Errorf("plain scalars accept every bit pattern: %v, %v", n, err)
	}

	_, err = FromABI(E_FAIL, color(1))
	if !errors.Is(err, E_FAIL.Err()) {
		t.Errorf("status error should win over conversion, got %v", err)
	}
}

func TestBool(t *testing.T) {
	if BoolOf(true) != 1 || BoolOf(false) != 0 {
		t.Error("BoolOf")
	}
	b, err := BoolResult(S_OK, BOOL(-1))
	if err != nil || !b {
		t.Errorf("BoolResult(-1) = %v, %v", b, err)
	}
	if _, err := BoolResult(E_FAIL, 1); err == nil {
		t.Error("BoolResult should surface failure")
	}
}

type point struct {
	X, Y int16
}

func TestBits(t *testing.T) {
	p := point{X: 1, Y: -1}
	got := FromBits[point](Bits(p), 0)
	if got != p {
		t.Errorf("FromBits(Bits(p)) = %+v, want %+v", got, p)
	}
}

func TestUnsupported(t *testing.T) {
	err := Unsupported("CoCreateInstance")
	if !errors.Is(err, ErrUnsupportedPlatform) {
		t.Error("Unsupported should wrap ErrUnsupportedPlatform")
	}
	if !strings.Contains(err.Error(), "CoCreateInstance") {
		t.Errorf("error text = %q", err.Error())
	}
}

// coInitialize has the shape of a generated fail-fast wrapper.
func coInitialize(dwCoInit uint32) error {
	panic(Unsupported("CoInitialize"))
}

func TestUnsupportedWrapperFailsFast(t *testing.T) {
	defer func() {
		err, ok := recover().(error)
		if !ok {
			t.Fatal("wrapper should panic with an error")
		}
		if !errors.Is(err, ErrUnsupportedPlatform) {
			t.Errorf("panic value %v should wrap ErrUnsupportedPlatform", err)
		}
		var ue *UnsupportedError
		if !errors.As(err, &ue) || ue.Function != "CoInitialize" {
			t.Errorf("panic value = %#v", err)
		}
	}()
	coInitialize(0)
	t.Error("wrapper returned instead of panicking")
}
