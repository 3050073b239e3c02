// Package nav holds the dashboard menus and trims them to what one role
// may see.
package nav

import (
	"slices"

	"github.com/jcmexdev/bizops-dashboard/internal/domain"
)

type ItemKind string

const (
	KindLink    ItemKind = "link"
	KindGroup   ItemKind = "group"
	KindHeading ItemKind = "heading"
)

// Item is one entry of a menu section: a link, a group of links, or a
// section title.
type Item struct {
	Kind     ItemKind      `json:"kind"`
	Title    string        `json:"title,omitempty"`
	Heading  string        `json:"heading,omitempty"`
	Link     string        `json:"link,omitempty"`
	Icon     string        `json:"icon,omitempty"`
	New      bool          `json:"new,omitempty"`
	Roles    []domain.Role `json:"roles,omitempty"`
	Children []Item        `json:"children,omitempty"`
}

// Menu is a titled section of the sidebar.
type Menu struct {
	Heading string        `json:"heading"`
	Roles   []domain.Role `json:"roles,omitempty"`
	Items   []Item        `json:"items"`
}

func Link(title, link, icon string, roles ...domain.Role) Item {
	return Item{Kind: KindLink, Title: title, Link: link, Icon: icon, Roles: roles}
}

func Group(title, icon string, roles []domain.Role, children ...Item) Item {
	return Item{Kind: KindGroup, Title: title, Icon: icon, Roles: roles, Children: children}
}

func Heading(text string) Item {
	return Item{Kind: KindHeading, Heading: text}
}

// visible reports whether a node tagged with roles is shown to role.
// Untagged nodes are shown to everyone.
func visible(roles []domain.Role, role domain.Role) bool {
	return len(roles) == 0 || slices.Contains(roles, role)
}

// Filter returns the sections and items role may see, in their original
// order. menus is not modified.
//
// A group whose own roles exclude role is dropped without looking at its
// children. A section is kept only if at least one link or group survives.
func Filter(menus []Menu, role domain.Role) []Menu {
	out := make([]Menu, 0, len(menus))
	for _, section := range menus {
		if !visible(section.Roles, role) {
			continue
		}
		items, navigable := filterSection(section.Items, role)
		if navigable == 0 {
			continue
		}
		out = append(out, Menu{
			Heading: section.Heading,
			Roles:   slices.Clone(section.Roles),
			Items:   items,
		})
	}
	return out
}

func filterSection(items []Item, role domain.Role) ([]Item, int) {
	out := make([]Item, 0, len(items))
	navigable := 0
	for _, item := range items {
		switch item.Kind {
		case KindHeading:
			out = append(out, item)
		case KindGroup:
			if !visible(item.Roles, role) {
				continue
			}
			children := FilterItems(item.Children, role)
			if len(children) == 0 {
				continue
			}
			g := item
			g.Roles = slices.Clone(item.Roles)
			g.Children = children
			out = append(out, g)
			navigable++
		default:
			if visible(item.Roles, role) {
				out = append(out, clone(item))
				navigable++
			}
		}
	}
	return out, navigable
}

// FilterItems keeps the links role may see. It serves the bottom menu and
// the children of a group.
func FilterItems(items []Item, role domain.Role) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if visible(item.Roles, role) {
			out = append(out, clone(item))
		}
	}
	return out
}

func clone(item Item) Item {
	item.Roles = slices.Clone(item.Roles)
	item.Children = slices.Clone(item.Children)
	return item
}
