package textbuf

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quote = "'Forty-two,' said Deep Thought, with infinite majesty and calm"

func TestBuffer_View(t *testing.T) {
	buf := New(quote)

	cases := []struct {
		start, end int
		want       string
	}{
		{0, 12, "'Forty-two,'"},
		{13, 17, "said"},
		{18, 22, "Deep"},
		{23, len(quote), "Thought, with infinite majesty and calm"},
		{5, 5, ""},
	}
	for _, tc := range cases {
		v, err := buf.View(tc.start, tc.end)
		require.NoError(t, err)
		assert.Equal(t, tc.end-tc.start, v.Len())
		assert.Equal(t, tc.want, v.String())
		assert.Equal(t, quote[tc.start:tc.end], string(v.Bytes()))
		v.Release()
	}
	assert.Equal(t, 0, buf.Leases())
}

func TestBuffer_View_RangeError(t *testing.T) {
	buf := New("hello")

	for _, r := range [][2]int{{-1, 2}, {3, 2}, {0, 6}, {6, 6}} {
		_, err := buf.View(r[0], r[1])
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrRange), "range %v", r)

		var rangeErr *RangeError
		require.True(t, errors.As(err, &rangeErr))
		assert.Equal(t, 5, rangeErr.Len)
	}
	assert.Equal(t, 0, buf.Leases(), "failed views must not hold leases")
}

func TestBuffer_View_InvalidBoundary(t *testing.T) {
	// "é" occupies bytes 5 and 6.
	buf := New("helloé world")

	_, err := buf.View(0, 6)
	assert.ErrorIs(t, err, ErrInvalidBoundary)

	_, err = buf.View(6, 8)
	var boundaryErr *BoundaryError
	require.True(t, errors.As(err, &boundaryErr))
	assert.Equal(t, 6, boundaryErr.Offset)

	v, err := buf.View(5, 7)
	require.NoError(t, err)
	assert.Equal(t, "é", v.String())
	v.Release()
}

func TestBuffer_MutationBlockedWhileBorrowed(t *testing.T) {
	buf := New("war is peace")
	v, err := buf.View(0, 3)
	require.NoError(t, err)

	assert.ErrorIs(t, buf.Append(" freedom is slavery"), ErrBorrowed)
	assert.ErrorIs(t, buf.Overwrite("ignorance"), ErrBorrowed)
	assert.ErrorIs(t, buf.Reset(), ErrBorrowed)
	_, err = buf.ReadFrom(strings.NewReader("more"))
	assert.ErrorIs(t, err, ErrBorrowed)

	assert.Equal(t, "war", v.String())
	assert.Equal(t, "war is peace", buf.String())

	v.Release()
	require.NoError(t, buf.Append("!"))
	assert.Equal(t, "war is peace!", buf.String())
}

func TestView_UseAfterRelease(t *testing.T) {
	buf := New("abc")
	v := buf.Borrow()
	v.Release()
	v.Release()

	assert.False(t, v.Valid())
	assert.Equal(t, 0, buf.Leases())
	assert.PanicsWithValue(t, ErrViewReleased, func() { _ = v.String() })

	require.NoError(t, buf.Overwrite("xyz"))
}

func TestView_BytesIsACopy(t *testing.T) {
	buf := New("war is peace")
	w, err := buf.View(0, 3)
	require.NoError(t, err)
	v := buf.Borrow()

	p := v.Bytes()
	p[0] = 'X'
	assert.Equal(t, "war", w.String())
	assert.Equal(t, "war is peace", v.String())
	assert.Equal(t, "war is peace", buf.String())

	kept := w.Bytes()
	v.Release()
	w.Release()
	require.NoError(t, buf.Overwrite("zzz is peace"))
	assert.Equal(t, "war", string(kept))
}

func TestView_ReadRacesReleaseAndOverwrite(t *testing.T) {
	buf := New("war is peace")
	v := buf.Borrow()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			got, ok := tryString(v)
			if !ok {
				return
			}
			if got != "war is peace" {
				t.Errorf("view read %q after release", got)
				return
			}
		}
	}()

	v.Release()
	require.NoError(t, buf.Overwrite("freedom is slavery"))
	wg.Wait()
}

func tryString(v View) (s string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return v.String(), true
}

func TestView_Zero(t *testing.T) {
	var v View
	assert.True(t, v.Valid())
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, "", v.String())
	assert.Equal(t, "", LastToken(v, ' ').String())
}

func TestLastToken(t *testing.T) {
	cases := []struct {
		in    string
		delim rune
		want  string
	}{
		{"the quick brown fox", ' ', "fox"},
		{"noseparator", ' ', "noseparator"},
		{"", ' ', ""},
		{"trailing ", ' ', ""},
		{"a/b/c", '/', "c"},
		{"çünkü ben öldükten", 'ü', "kten"},
		{"x→y→z", '→', "z"},
	}
	for _, tc := range cases {
		buf := New(tc.in)
		v := buf.Borrow()
		got := LastToken(v, tc.delim)
		assert.Equal(t, tc.want, got.String(), "input %q", tc.in)
		v.Release()
	}
}

func TestLastToken_SharesLease(t *testing.T) {
	buf := New(quote)
	v := buf.Borrow()
	tok := LastToken(v, ' ')
	assert.Equal(t, "calm", tok.String())
	assert.Equal(t, len(quote)-4, tok.Start())
	assert.Equal(t, len(quote), tok.End())
	assert.Equal(t, 1, buf.Leases())

	tok.Release()
	assert.False(t, v.Valid())
	assert.Equal(t, 0, buf.Leases())
}

func TestLastTokenFunc(t *testing.T) {
	buf := New("war is peace\nfreedom")
	v := buf.Borrow()
	defer v.Release()

	assert.Equal(t, "peace\nfreedom", LastToken(v, ' ').String())
	assert.Equal(t, "freedom", LastTokenFunc(v, unicode.IsSpace).String())
}

func TestTrimRightFunc(t *testing.T) {
	buf := New("Çünkü ben kitap değilim \t\n")
	v := buf.Borrow()

	body := TrimRightFunc(v, unicode.IsSpace)
	assert.Equal(t, "Çünkü ben kitap değilim", body.String())
	assert.Equal(t, 0, body.Start())
	assert.Equal(t, 1, buf.Leases())

	body.Release()
	assert.False(t, v.Valid())
	assert.Equal(t, 0, buf.Leases())
}

func TestLonger(t *testing.T) {
	short, long := New("ab"), New("xyz")
	a, b := short.Borrow(), long.Borrow()
	assert.Equal(t, "xyz", Longer(a, b).String())
	assert.Equal(t, "xyz", Longer(b, a).String())
	a.Release()
	b.Release()
}

func TestLonger_TieGoesToSecond(t *testing.T) {
	buf := New("abcxyz")
	a, err := buf.View(0, 3)
	require.NoError(t, err)
	b, err := buf.View(3, 6)
	require.NoError(t, err)

	got := Longer(a, b)
	assert.Equal(t, "xyz", got.String())
	assert.Equal(t, 3, got.Start())

	got = Longer(b, a)
	assert.Equal(t, "abc", got.String())
}

func TestLonger_BoundToShorterLived(t *testing.T) {
	q1 := New("Even a smile can be charity")
	q2 := New("Two truths cannot contradict one another")
	a, b := q1.Borrow(), q2.Borrow()

	got := Longer(a, b)
	assert.Equal(t, q2.String(), got.String())

	// Releasing the shorter input ends the result even though it points at q2.
	a.Release()
	assert.False(t, got.Valid())
	assert.Panics(t, func() { _ = got.Bytes() })
	assert.True(t, b.Valid())

	b.Release()
	assert.Equal(t, 0, q1.Leases())
	assert.Equal(t, 0, q2.Leases())
}

func TestLongerWithAnnouncement(t *testing.T) {
	buf := New("one three")
	a, _ := buf.View(0, 3)
	b, _ := buf.View(4, 9)

	var out bytes.Buffer
	got, err := LongerWithAnnouncement(&out, a, b, 42)
	require.NoError(t, err)
	assert.Equal(t, "three", got.String())
	assert.Equal(t, "Announcement! 42\n", out.String())
}

func TestBuffer_ReadFrom(t *testing.T) {
	text := strings.Repeat("lorem ipsum ", 200)
	buf := New("")
	n, err := buf.ReadFrom(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, int64(len(text)), n)
	assert.Equal(t, text, buf.String())
}
