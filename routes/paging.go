package routes

import (
	"net/url"
	"strconv"

	"github.com/illuscio-dev/spanroutes-go/spanerrors"
	"golang.org/x/xerrors"
)

// Paging query parameters and response headers.
const (
	PagingOffset      = "paging-offset"
	PagingLimit       = "paging-limit"
	PagingTotalItems  = "paging-total-items"
	PagingTotalPages  = "paging-total-pages"
	PagingCurrentPage = "paging-current-page"
	PagingNext        = "paging-next"
	PagingPrevious    = "paging-previous"
)

type valueSetter interface {
	Set(key string, value string)
}

type valueFetcher interface {
	Get(key string) string
}

// PageRequest is the page a client asks for.
type PageRequest struct {
	// How far to offset the page.
	Offset int
	// Maximum item count to return. 0 or less means no limit.
	Limit int
}

// ToParams dumps the page request to URL params.
func (pageRequest PageRequest) ToParams(params valueSetter) {
	params.Set(PagingOffset, strconv.Itoa(pageRequest.Offset))
	// Only send back limit if it is valid.
	if pageRequest.Limit > 0 {
		params.Set(PagingLimit, strconv.Itoa(pageRequest.Limit))
	}
}

// Bounds returns the slice bounds of the page in a collection of totalItems.
func (pageRequest PageRequest) Bounds(totalItems int) (start int, end int) {
	start = pageRequest.Offset
	if start > totalItems {
		start = totalItems
	}

	end = totalItems
	if pageRequest.Limit > 0 && start+pageRequest.Limit < totalItems {
		end = start + pageRequest.Limit
	}
	return start, end
}

// Page describes the page a response holds.
type Page struct {
	PageRequest
	TotalItems  int
	TotalPages  int
	CurrentPage int
	Next        string
	Previous    string
}

/*
NewPage describes the page served for pageRequest out of totalItems. When link is not
nil, Next and Previous are set to copies of link with the paging params of the
neighboring pages.
*/
func NewPage(pageRequest PageRequest, totalItems int, link *url.URL) Page {
	page := Page{
		PageRequest: pageRequest,
		TotalItems:  totalItems,
		TotalPages:  1,
	}

	limit := pageRequest.Limit
	if limit <= 0 {
		return page
	}

	page.TotalPages = (totalItems + limit - 1) / limit
	page.CurrentPage = pageRequest.Offset / limit

	if link == nil {
		return page
	}

	if pageRequest.Offset+limit < totalItems {
		page.Next = pageLink(link, PageRequest{Offset: pageRequest.Offset + limit, Limit: limit})
	}
	if pageRequest.Offset > 0 {
		previous := pageRequest.Offset - limit
		if previous < 0 {
			previous = 0
		}
		page.Previous = pageLink(link, PageRequest{Offset: previous, Limit: limit})
	}
	return page
}

func pageLink(link *url.URL, pageRequest PageRequest) string {
	copied := *link
	query := copied.Query()
	pageRequest.ToParams(query)
	copied.RawQuery = query.Encode()
	return copied.String()
}

// ToHeaders writes the page to response headers.
func (page Page) ToHeaders(headers valueSetter) {
	page.PageRequest.ToParams(headers)
	// Only send back valid fields.
	if page.TotalItems > 0 {
		headers.Set(PagingTotalItems, strconv.Itoa(page.TotalItems))
	}
	if page.TotalPages > 0 {
		headers.Set(PagingTotalPages, strconv.Itoa(page.TotalPages))
	}
	if page.CurrentPage > -1 {
		headers.Set(PagingCurrentPage, strconv.Itoa(page.CurrentPage))
	}
	if page.Previous != "" {
		headers.Set(PagingPrevious, page.Previous)
	}
	if page.Next != "" {
		headers.Set(PagingNext, page.Next)
	}
}

func getInt(values valueFetcher, fieldName string, defaultValue int) (int, error) {
	value := values.Get(fieldName)
	if value == "" {
		return defaultValue, nil
	}

	valueInt, err := strconv.Atoi(value)
	if err != nil {
		return 0, xerrors.Errorf("%v is not int: %w", fieldName, err)
	}
	return valueInt, nil
}

// PageRequestFromParams reads a page request from URL params. Negative values are an
// error.
func PageRequestFromParams(params valueFetcher, defaultLimit int) (PageRequest, error) {
	var pageRequest PageRequest
	var err error

	pageRequest.Offset, err = getInt(params, PagingOffset, 0)
	if err != nil {
		return PageRequest{}, err
	}
	if pageRequest.Offset < 0 {
		return PageRequest{}, xerrors.Errorf("%v cannot be negative", PagingOffset)
	}

	pageRequest.Limit, err = getInt(params, PagingLimit, defaultLimit)
	if err != nil {
		return PageRequest{}, err
	}
	if pageRequest.Limit < 0 {
		return PageRequest{}, xerrors.Errorf("%v cannot be negative", PagingLimit)
	}

	return pageRequest, nil
}

// PageFromHeaders reads a page from response headers. Fields missing from the headers
// are set to -1.
func PageFromHeaders(headers valueFetcher, defaultLimit int) (Page, error) {
	pageRequest, err := PageRequestFromParams(headers, defaultLimit)
	if err != nil {
		return Page{}, err
	}

	page := Page{PageRequest: pageRequest}

	if page.TotalPages, err = getInt(headers, PagingTotalPages, -1); err != nil {
		return Page{}, err
	}
	if page.TotalItems, err = getInt(headers, PagingTotalItems, -1); err != nil {
		return Page{}, err
	}
	if page.CurrentPage, err = getInt(headers, PagingCurrentPage, -1); err != nil {
		return Page{}, err
	}

	page.Previous = headers.Get(PagingPrevious)
	page.Next = headers.Get(PagingNext)

	return page, nil
}

// PageRequest reads the paging params of the request's query string. Unreadable
// params are a QueryParamError.
func (request *Request) PageRequest(defaultLimit int) (PageRequest, error) {
	pageRequest, err := PageRequestFromParams(request.URL.Query(), defaultLimit)
	if err != nil {
		return PageRequest{}, spanerrors.QueryParamError.New(err.Error(), nil, err)
	}
	return pageRequest, nil
}
