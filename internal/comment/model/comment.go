package model

// Comment is a single post or reply as stored in the comment collection.
type Comment struct {
	UID       string  `json:"uid" bson:"uid"`
	Downs     int     `json:"downs" bson:"downs"`
	ParentID  *string `json:"parent_id" bson:"parent_id,omitempty"`
	Ups       int     `json:"ups" bson:"ups"`
	Subreddit string  `json:"subreddit" bson:"subreddit"`
	Timestamp string  `json:"timestamp" bson:"timestamp"`
	Content   string  `json:"content" bson:"content"`
	CID       string  `json:"cid" bson:"cid"`
}

// HasParent reports whether c replies to another comment.
func (c Comment) HasParent() bool {
	return c.ParentID != nil && *c.ParentID != ""
}

// Ancestry holds up to two ancestors of a comment. A nil field means the
// ancestor is absent: top-level comment, dangling reference or failed lookup.
type Ancestry struct {
	Parent      *Comment
	GrandParent *Comment
}

// EnrichedComment is a timeline row: the comment plus whatever ancestry was found.
type EnrichedComment struct {
	Comment
	Parent      *Comment `json:"parent,omitempty"`
	GrandParent *Comment `json:"grand_parent,omitempty"`
}

func Enrich(c Comment, a Ancestry) EnrichedComment {
	return EnrichedComment{Comment: c, Parent: a.Parent, GrandParent: a.GrandParent}
}
