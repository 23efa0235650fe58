package oembed

import "regexp"

// Provider describes one oEmbed endpoint and the page URLs it answers for.
type Provider struct {
	Name     string
	Endpoint string
	Patterns []*regexp.Regexp
	// IframeHosts lists the hosts the provider's embed HTML may frame.
	IframeHosts []string
}

// Matches reports whether rawURL belongs to the provider.
func (p *Provider) Matches(rawURL string) bool {
	for _, re := range p.Patterns {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`^` + e + `$`)
	}
	return out
}

// DefaultProviders is the basic set of well-known providers that publish
// open oEmbed endpoints without an API key.
func DefaultProviders() []Provider {
	return []Provider{
		{
			Name:     "YouTube",
			Endpoint: "https://www.youtube.com/oembed",
			Patterns: patterns(
				`https?://(?:www\.|m\.)?youtube\.com/watch\S+`,
				`https?://(?:www\.)?youtube\.com/shorts/\S+`,
				`https?://(?:www\.)?youtube\.com/playlist\S+`,
				`https?://youtu\.be/\S+`,
			),
			IframeHosts: []string{"www.youtube.com", "www.youtube-nocookie.com"},
		},
		{
			Name:        "Vimeo",
			Endpoint:    "https://vimeo.com/api/oembed.json",
			Patterns:    patterns(`https?://(?:www\.)?vimeo\.com/\S+`, `https?://player\.vimeo\.com/video/\S+`),
			IframeHosts: []string{"player.vimeo.com"},
		},
		{
			Name:     "Flickr",
			Endpoint: "https://www.flickr.com/services/oembed/",
			Patterns: patterns(`https?://(?:www\.)?flickr\.com/photos/\S+`, `https?://flic\.kr/\S+`),
		},
		{
			Name:        "SoundCloud",
			Endpoint:    "https://soundcloud.com/oembed",
			Patterns:    patterns(`https?://(?:www\.|m\.)?soundcloud\.com/\S+`),
			IframeHosts: []string{"w.soundcloud.com"},
		},
		{
			Name:        "Spotify",
			Endpoint:    "https://open.spotify.com/oembed",
			Patterns:    patterns(`https?://open\.spotify\.com/\S+`, `spotify:\S+`),
			IframeHosts: []string{"open.spotify.com"},
		},
		{
			Name:     "Twitter",
			Endpoint: "https://publish.twitter.com/oembed",
			Patterns: patterns(`https?://(?:www\.|mobile\.)?(?:twitter|x)\.com/\w+/status(?:es)?/\d+\S*`),
		},
		{
			Name:        "Dailymotion",
			Endpoint:    "https://www.dailymotion.com/services/oembed",
			Patterns:    patterns(`https?://(?:www\.)?dailymotion\.com/video/\S+`, `https?://dai\.ly/\S+`),
			IframeHosts: []string{"www.dailymotion.com", "geo.dailymotion.com"},
		},
		{
			Name:        "SlideShare",
			Endpoint:    "https://www.slideshare.net/api/oembed/2",
			Patterns:    patterns(`https?://(?:www\.)?slideshare\.net/\S+`),
			IframeHosts: []string{"www.slideshare.net"},
		},
	}
}
