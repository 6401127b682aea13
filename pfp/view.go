package pfp

import (
	"image/color"
	"net/url"

	"github.com/sasha-s/go-deadlock"
	"nostrpfp/engine/library"
	"nostrpfp/messaging/notify"
)

// PFPSize is the default diameter in points.
const PFPSize = 52.0

// Image loader limits handed to whatever downloads the picture.
const (
	MaxByteSize    = 5_242_880
	DownsampleSize = 200
)

// Rendering is everything needed to draw one profile picture.
type Rendering struct {
	Pubkey           library.Account
	URL              *url.URL
	FallbackURL      *url.URL
	Source           Source
	Size             float64
	PlaceholderColor color.RGBA
	RingColor        color.RGBA
	RingWidth        float64
	MaxByteSize      int
	DownsampleSize   int
}

// ProfilePic is the state behind one profile picture on screen. It follows profile updates
// for its pubkey until Close is called.
type ProfilePic struct {
	pubkey    library.Account
	size      float64
	highlight Highlight
	resolver  *Resolver
	onChange  func(Rendering)

	mu      *deadlock.Mutex
	picture string
	// newest update applied so far, updates at or before it are stale
	seenAt  int64
	seen    bool
	sub     *notify.Subscription
	stopped chan struct{}
}

// NewProfilePic starts following bus for updates to pubkey. picture is an optional cached URL.
// onChange, if set, is called from the ProfilePic's own goroutine after each accepted update.
func NewProfilePic(resolver *Resolver, bus *notify.Bus, pubkey library.Account, size float64, highlight Highlight, picture string, onChange func(Rendering)) *ProfilePic {
	if size <= 0 {
		size = PFPSize
	}
	if highlight == nil {
		highlight = HighlightNone{}
	}
	p := &ProfilePic{
		pubkey:    pubkey,
		size:      size,
		highlight: highlight,
		resolver:  resolver,
		onChange:  onChange,
		mu:        &deadlock.Mutex{},
		picture:   picture,
		stopped:   make(chan struct{}),
	}
	if bus == nil {
		close(p.stopped)
		return p
	}
	p.sub = bus.Subscribe(notify.ProfileUpdated, notify.ForPubkey(pubkey))
	go p.listen()
	return p
}

func (p *ProfilePic) listen() {
	defer close(p.stopped)
	for {
		select {
		case n := <-p.sub.C:
			if p.handle(n) && p.onChange != nil {
				p.onChange(p.Render())
			}
		case <-p.sub.Done():
			return
		}
	}
}

// handle applies an update for our pubkey. Updates older than one already applied are dropped.
// Updates without a picture leave the cached one alone but still trigger a re-render, since the
// directory may have changed underneath.
func (p *ProfilePic) handle(n notify.Notification) bool {
	update, ok := n.Object.(notify.ProfileUpdate)
	if !ok || update.Pubkey != p.pubkey {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seen && update.Timestamp <= p.seenAt {
		return false
	}
	p.seen, p.seenAt = true, update.Timestamp
	if len(update.Profile.Picture) > 0 {
		p.picture = update.Profile.Picture
	}
	return true
}

func (p *ProfilePic) Pubkey() library.Account {
	return p.pubkey
}

// Picture is the cached picture override, possibly empty.
func (p *ProfilePic) Picture() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.picture
}

// Render resolves the URL against the current policy and directory.
func (p *ProfilePic) Render() Rendering {
	res := p.resolver.Resolve(p.pubkey, p.Picture())
	return Rendering{
		Pubkey:           p.pubkey,
		URL:              res.URL,
		FallbackURL:      p.resolver.Fallback(p.pubkey),
		Source:           res.Source,
		Size:             p.size,
		PlaceholderColor: IDToColor(p.pubkey),
		RingColor:        HighlightColor(p.highlight),
		RingWidth:        LineWidth(p.highlight),
		MaxByteSize:      MaxByteSize,
		DownsampleSize:   DownsampleSize,
	}
}

// Close stops following updates and waits for the listener to exit.
// It must not be called from inside onChange.
func (p *ProfilePic) Close() {
	if p.sub != nil {
		p.sub.Close()
	}
	<-p.stopped
}
