package facebook

type graphError struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type page struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Link     string `json:"link"`
	FanCount *int64 `json:"fan_count"`
	Picture  *struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

type postsResponse struct {
	Data   []post `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

type pagesSearchResponse struct {
	Data []page `json:"data"`
}

type post struct {
	ID           string `json:"id"`
	Message      string `json:"message"`
	CreatedTime  string `json:"created_time"`
	FullPicture  string `json:"full_picture"`
	PermalinkURL string `json:"permalink_url"`
	Attachments  *struct {
		Data []attachment `json:"data"`
	} `json:"attachments"`
	Reactions *summaryEdge `json:"reactions"`
	Comments  *summaryEdge `json:"comments"`
	Shares    *struct {
		Count int64 `json:"count"`
	} `json:"shares"`
}

type attachment struct {
	MediaType string `json:"media_type"`
	URL       string `json:"url"`
	Media     *struct {
		Image struct {
			Src string `json:"src"`
		} `json:"image"`
	} `json:"media"`
	Subattachments *struct {
		Data []attachment `json:"data"`
	} `json:"subattachments"`
}

type summaryEdge struct {
	Summary struct {
		TotalCount int64 `json:"total_count"`
	} `json:"summary"`
}
