package catalog

import "sync"

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// Default returns the built-in Firefox preference catalog.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		defaultCatalog = MustNew(builtinSettings()...)
	})
	return defaultCatalog
}

func builtinSettings() []Setting {
	privacy := []CategoryID{CategoryPrivacy}
	security := []CategoryID{CategorySecurity}
	performance := []CategoryID{CategoryPerformance}
	privacySecurity := []CategoryID{CategoryPrivacy, CategorySecurity}

	return []Setting{
		// Privacy
		{
			ID:          "privacy.donottrackheader.enabled",
			Categories:  privacy,
			Title:       "Send Do Not Track",
			Description: "Ask websites not to track you by sending the DNT header",
			HelpText:    "Most sites ignore this header and it adds a bit of fingerprinting surface.",
			Type:        TypeBoolean,
			Default:     Bool(true),
		},
		{
			ID:          "privacy.trackingprotection.enabled",
			Categories:  privacy,
			Title:       "Tracking Protection",
			Description: "Block known trackers in all windows",
			Type:        TypeBoolean,
			Default:     Bool(true),
		},
		{
			ID:          "privacy.trackingprotection.socialtracking.enabled",
			Categories:  privacy,
			Title:       "Block Social Trackers",
			Description: "Block social media trackers embedded in pages",
			Type:        TypeBoolean,
			Default:     Bool(true),
		},
		{
			ID:          "privacy.resistFingerprinting",
			Categories:  privacySecurity,
			Title:       "Resist Fingerprinting",
			Description: "Make the browser look like every other RFP-enabled browser",
			HelpText:    "Can break sites that rely on time zone, canvas or window size. Letterboxing and UTC time are side effects.",
			Type:        TypeBoolean,
			Default:     Bool(false),
			Advanced:    true,
		},
		{
			ID:          "privacy.firstparty.isolate",
			Categories:  privacy,
			Title:       "First-Party Isolation",
			Description: "Isolate cookies and caches to the first-party domain",
			HelpText:    "Superseded by Total Cookie Protection in recent releases; may break cross-site logins.",
			Type:        TypeBoolean,
			Default:     Bool(false),
			Advanced:    true,
		},
		{
			ID:          "network.cookie.cookieBehavior",
			Categories:  privacy,
			Title:       "Cookie Behavior",
			Description: "Which cookies Firefox accepts",
			Type:        TypeNumber,
			Default:     Number(5),
			Options: []Option{
				{Value: 0, Label: "Accept all"},
				{Value: 1, Label: "Block third-party"},
				{Value: 2, Label: "Block all"},
				{Value: 3, Label: "Block unvisited"},
				{Value: 4, Label: "Block cross-site trackers"},
				{Value: 5, Label: "Total Cookie Protection"},
			},
		},
		{
			ID:          "toolkit.telemetry.enabled",
			Categories:  privacy,
			Title:       "Telemetry",
			Description: "Send usage data to Mozilla",
			Type:        TypeBoolean,
			Default:     Bool(false),
		},
		{
			ID:          "datareporting.healthreport.uploadEnabled",
			Categories:  privacy,
			Title:       "Health Report Upload",
			Description: "Upload technical and interaction data to Mozilla",
			Type:        TypeBoolean,
			Default:     Bool(false),
		},
		{
			ID:          "browser.send_pings",
			Categories:  privacy,
			Title:       "Hyperlink Auditing",
			Description: "Allow sites to send pings when links are clicked",
			Type:        TypeBoolean,
			Default:     Bool(false),
		},
		{
			ID:          "geo.enabled",
			Categories:  privacy,
			Title:       "Geolocation",
			Description: "Allow sites to request your location",
			Type:        TypeBoolean,
			Default:     Bool(false),
		},
		{
			ID:          "media.peerconnection.enabled",
			Categories:  privacy,
			Title:       "WebRTC",
			Description: "Enable WebRTC peer connections",
			HelpText:    "Disabling prevents local IP leaks but breaks video calls in the browser.",
			Type:        TypeBoolean,
			Default:     Bool(true),
			Advanced:    true,
		},
		{
			ID:          "browser.search.suggest.enabled",
			Categories:  privacy,
			Title:       "Search Suggestions",
			Description: "Send keystrokes to the search engine for live suggestions",
			Type:        TypeBoolean,
			Default:     Bool(false),
		},
		{
			ID:          "privacy.sanitize.sanitizeOnShutdown",
			Categories:  privacy,
			Title:       "Clear History on Shutdown",
			Description: "Clear browsing data when Firefox closes",
			Type:        TypeBoolean,
			Default:     Bool(false),
		},

		// Security
		{
			ID:          "dom.security.https_only_mode",
			Categories:  security,
			Title:       "HTTPS-Only Mode",
			Description: "Upgrade every connection to HTTPS",
			Type:        TypeBoolean,
			Default:     Bool(true),
		},
		{
			ID:          "security.ssl.require_safe_negotiation",
			Categories:  security,
			Title:       "Require Safe Negotiation",
			Description: "Refuse servers that do not support secure renegotiation",
			Type:        TypeBoolean,
			Default:     Bool(true),
			Advanced:    true,
		},
		{
			ID:          "security.tls.version.min",
			Categories:  security,
			Title:       "Minimum TLS Version",
			Description: "Oldest TLS version Firefox will negotiate",
			Type:        TypeNumber,
			Default:     Number(3),
			Options: []Option{
				{Value: 1, Label: "TLS 1.0"},
				{Value: 2, Label: "TLS 1.1"},
				{Value: 3, Label: "TLS 1.2"},
				{Value: 4, Label: "TLS 1.3"},
			},
		},
		{
			ID:          "security.OCSP.require",
			Categories:  security,
			Title:       "Hard-Fail OCSP",
			Description: "Treat unreachable OCSP responders as a certificate failure",
			HelpText:    "Stronger revocation checking at the cost of occasional connection errors.",
			Type:        TypeBoolean,
			Default:     Bool(false),
			Advanced:    true,
		},
		{
			ID:          "network.IDN_show_punycode",
			Categories:  security,
			Title:       "Show Punycode",
			Description: "Display internationalized domain names as punycode to expose homograph attacks",
			Type:        TypeBoolean,
			Default:     Bool(true),
		},
		{
			ID:          "browser.safebrowsing.malware.enabled",
			Categories:  privacySecurity,
			Title:       "Safe Browsing: Malware",
			Description: "Check pages against Google Safe Browsing malware lists",
			Type:        TypeBoolean,
			Default:     Bool(true),
		},
		{
			ID:          "pdfjs.enableScripting",
			Categories:  security,
			Title:       "PDF Scripting",
			Description: "Allow JavaScript inside PDFs opened in the built-in viewer",
			Type:        TypeBoolean,
			Default:     Bool(false),
		},
		{
			ID:          "network.trr.mode",
			Categories:  privacySecurity,
			Title:       "DNS over HTTPS",
			Description: "Resolve names through an encrypted DNS resolver",
			Type:        TypeNumber,
			Default:     Number(2),
			Options: []Option{
				{Value: 0, Label: "Off (default)"},
				{Value: 2, Label: "DoH first, fall back to native"},
				{Value: 3, Label: "DoH only"},
				{Value: 5, Label: "Off (explicitly)"},
			},
		},
		{
			ID:          "network.trr.uri",
			Categories:  privacySecurity,
			Title:       "DNS over HTTPS Resolver",
			Description: "URL of the DoH resolver",
			Type:        TypeString,
			Default:     String("https://mozilla.cloudflare-dns.com/dns-query"),
			Advanced:    true,
		},

		// Performance
		{
			ID:          "browser.sessionstore.interval",
			Categories:  performance,
			Title:       "Session Save Interval",
			Description: "How often Firefox saves the session to disk",
			HelpText:    "Higher values reduce disk writes on SSDs at the cost of losing more tabs after a crash.",
			Type:        TypeNumber,
			Default:     Number(15000),
			Min:         Float(5000),
			Max:         Float(120000),
			Step:        Float(5000),
			Unit:        "ms",
		},
		{
			ID:          "network.http.max-persistent-connections-per-server",
			Categories:  performance,
			Title:       "Connections per Server",
			Description: "Maximum persistent HTTP connections per server",
			Type:        TypeNumber,
			Default:     Number(6),
			Min:         Float(1),
			Max:         Float(32),
			Step:        Float(1),
		},
		{
			ID:          "network.http.connection-timeout",
			Categories:  performance,
			Title:       "Connection Timeout",
			Description: "Seconds to wait before giving up on a connection",
			Type:        TypeNumber,
			Default:     Number(90),
			Min:         Float(10),
			Max:         Float(300),
			Step:        Float(10),
			Unit:        "s",
		},
		{
			ID:          "browser.cache.memory.capacity",
			Categories:  performance,
			Title:       "Memory Cache Size",
			Description: "Memory cache capacity; -1 lets Firefox decide",
			Type:        TypeNumber,
			Default:     Number(-1),
			Min:         Float(-1),
			Max:         Float(1048576),
			Step:        Float(1024),
			Unit:        "KB",
		},
		{
			ID:          "gfx.webrender.all",
			Categories:  performance,
			Title:       "Force WebRender",
			Description: "Use the GPU-based WebRender compositor everywhere",
			Type:        TypeBoolean,
			Default:     Bool(false),
			Advanced:    true,
		},
		{
			ID:          "network.prefetch-next",
			Categories:  []CategoryID{CategoryPerformance, CategoryPrivacy},
			Title:       "Link Prefetching",
			Description: "Prefetch pages that a site hints you will visit next",
			HelpText:    "Faster navigation, but contacts servers for pages you may never open.",
			Type:        TypeBoolean,
			Default:     Bool(false),
		},
		{
			ID:          "dom.ipc.processCount",
			Categories:  performance,
			Title:       "Content Processes",
			Description: "Number of web content processes",
			Type:        TypeNumber,
			Default:     Number(8),
			Min:         Float(1),
			Max:         Float(16),
			Step:        Float(1),
		},
	}
}
