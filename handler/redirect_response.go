package handler

import "net/http"

type redirectResponse struct {
	url     string
	code    int
	cookies []*http.Cookie
}

func (r redirectResponse) Render(w http.ResponseWriter, req *http.Request) error {
	for _, c := range r.cookies {
		http.SetCookie(w, c)
	}
	http.Redirect(w, req, r.url, r.code)
	return nil
}

// Redirect creates a redirect response with status 302 (Found).
func Redirect(url string, cookies ...*http.Cookie) Response {
	return redirectResponse{url: url, code: http.StatusFound, cookies: cookies}
}
