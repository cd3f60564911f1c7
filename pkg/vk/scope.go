package vk

import "strings"

// Permission is a VK user access permission, see https://dev.vk.com/reference/access-rights.
type Permission string

const (
	PermissionNotify        Permission = "notify"
	PermissionFriends       Permission = "friends"
	PermissionPhotos        Permission = "photos"
	PermissionAudio         Permission = "audio"
	PermissionVideo         Permission = "video"
	PermissionStories       Permission = "stories"
	PermissionPages         Permission = "pages"
	PermissionStatus        Permission = "status"
	PermissionNotes         Permission = "notes"
	PermissionWall          Permission = "wall"
	PermissionAds           Permission = "ads"
	PermissionOffline       Permission = "offline"
	PermissionDocs          Permission = "docs"
	PermissionGroups        Permission = "groups"
	PermissionNotifications Permission = "notifications"
	PermissionStats         Permission = "stats"
	PermissionEmail         Permission = "email"
	PermissionMarket        Permission = "market"
	PermissionPhoneNumber   Permission = "phone_number"
)

// Scope joins permissions into the comma separated form VK expects,
// skipping empty and duplicate entries while keeping their order.
func Scope(perms ...Permission) string {
	seen := make(map[Permission]struct{}, len(perms))
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		p = Permission(strings.TrimSpace(string(p)))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		names = append(names, string(p))
	}
	return strings.Join(names, ",")
}
