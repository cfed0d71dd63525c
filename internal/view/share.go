package view

import (
	"html/template"
	"net/url"
	"strings"
)

// ShareLink is a share target rendered under an item.
type ShareLink struct {
	Key   string
	Label string
	URL   string
	Icon  template.HTML
}

type shareTarget struct {
	Key   string
	Label string
	SVG   string
	Build func(pageURL, title string) string
}

var shareTargets = []shareTarget{
	{Key: "x", Label: "Share on X", SVG: `<svg viewBox="0 0 24 24" fill="currentColor" aria-hidden="true"><path d="M18.901 1.153h3.68l-8.04 9.19L24 22.846h-7.406l-5.8-7.584-6.638 7.584H.474l8.6-9.83L0 1.154h7.594l5.243 6.932ZM17.61 20.644h2.039L6.486 3.24H4.298Z"/></svg>`, Build: func(pageURL, title string) string {
		return "https://twitter.com/intent/tweet?" + url.Values{"text": {title}, "url": {pageURL}}.Encode()
	}},
	{Key: "email", Label: "Send by email", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M21.75 6.75v10.5a2.25 2.25 0 0 1-2.25 2.25h-15A2.25 2.25 0 0 1 2.25 17.25V6.75M21.75 6.75A2.25 2.25 0 0 0 19.5 4.5h-15A2.25 2.25 0 0 0 2.25 6.75v.243c0 .781.405 1.506 1.071 1.916l7.5 4.615a2.25 2.25 0 0 0 2.157 0l7.5-4.615a2.25 2.25 0 0 0 1.072-1.916V6.75"/></svg>`, Build: func(pageURL, title string) string {
		return "mailto:?" + strings.ReplaceAll(url.Values{"subject": {title}, "body": {pageURL}}.Encode(), "+", "%20")
	}},
	{Key: "link", Label: "Permalink", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M12 21c4.193 0 7.716-2.867 8.716-6.747M12 21c-4.193 0-7.716-2.867-8.716-6.747M12 21c2.485 0 4.5-4.03 4.5-9s-2.015-9-4.5-9m0 18c-2.485 0-4.5-4.03-4.5-9s2.015-9 4.5-9m0-0c3.365 0 6.299 1.847 7.843 4.582M12 3c-3.365 0-6.299 1.847-7.843 4.582m15.686 0c.737 1.305 1.157 2.812 1.157 4.418 0 .778-.099 1.533-.284 2.253m-.873 4.836C18.133 15.685 15.162 16.5 12 16.5s-6.134-.815-8.716-2.247m0 0A8.948 8.948 0 0 1 3 12c0-1.605.42-3.112 1.157-4.417"/></svg>`, Build: func(pageURL, _ string) string {
		return pageURL
	}},
}

// ShareLinks builds the share targets for a page. Nothing is shared without a URL.
func ShareLinks(pageURL, title string) []ShareLink {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil
	}
	links := make([]ShareLink, 0, len(shareTargets))
	for _, target := range shareTargets {
		links = append(links, ShareLink{
			Key:   target.Key,
			Label: target.Label,
			URL:   target.Build(pageURL, title),
			Icon:  template.HTML(target.SVG),
		})
	}
	return links
}
