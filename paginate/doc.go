// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package paginate computes page numbers for list views.

	page := paginate.New(total, cfg.PageSize, paginate.ParsePage(r.URL.Query().Get("page")))
	rows := query(... LIMIT page.Limit() OFFSET page.Offset())

Requested pages outside [1, Last] are clamped, so a stale ?page=9 link
still lands on the last page. Window lists the page numbers within
WindowRadius (2) of the current page; templates render

	« First  ‹ Previous  3 4 [5] 6 7  Next ›  Last »

with First/Previous only when HasPrevious and Next/Last only when HasNext.
*/
package paginate
