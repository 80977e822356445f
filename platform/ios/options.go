package ios

// Version is an iOS major version.
type Version int

type option[T ~uint] struct {
	name  string
	flag  T
	since Version
}

func parseOptions[T ~uint](table []option[T], options []string, version Version) T {
	var out T
	for _, name := range options {
		for _, o := range table {
			if o.name == name && version >= o.since {
				out |= o.flag
			}
		}
	}
	return out
}

// AuthorizationOptions mirrors UNAuthorizationOptions.
type AuthorizationOptions uint

const (
	AuthorizationBadge AuthorizationOptions = 1 << iota
	AuthorizationSound
	AuthorizationAlert
	AuthorizationCarPlay
	AuthorizationCriticalAlert
	AuthorizationProvidesAppNotificationSettings
	AuthorizationProvisional
	AuthorizationAnnouncement
)

var authorizationTable = []option[AuthorizationOptions]{
	{"alert", AuthorizationAlert, 0},
	{"badge", AuthorizationBadge, 0},
	{"sound", AuthorizationSound, 0},
	{"carPlay", AuthorizationCarPlay, 0},
	{"providesAppNotificationSettings", AuthorizationProvidesAppNotificationSettings, 12},
	{"provisional", AuthorizationProvisional, 12},
	{"criticalAlert", AuthorizationCriticalAlert, 12},
	{"announcement", AuthorizationAnnouncement, 13},
}

// ParseAuthorizationOptions maps option names to flags. Unknown names and
// options the OS version does not support are ignored.
func ParseAuthorizationOptions(options []string, version Version) AuthorizationOptions {
	return parseOptions(authorizationTable, options, version)
}

// CategoryOptions mirrors UNNotificationCategoryOptions.
type CategoryOptions uint

const (
	CategoryCustomDismissAction CategoryOptions = 1 << iota
	CategoryAllowInCarPlay
	CategoryHiddenPreviewsShowTitle
	CategoryHiddenPreviewsShowSubtitle
	CategoryAllowAnnouncement
)

var categoryTable = []option[CategoryOptions]{
	{"customDismissAction", CategoryCustomDismissAction, 0},
	{"allowInCarPlay", CategoryAllowInCarPlay, 0},
	{"hiddenPreviewsShowTitle", CategoryHiddenPreviewsShowTitle, 11},
	{"hiddenPreviewsShowSubtitle", CategoryHiddenPreviewsShowSubtitle, 11},
	{"allowAnnouncement", CategoryAllowAnnouncement, 13},
}

// ParseCategoryOptions maps option names to category flags, skipping names
// unknown to version.
func ParseCategoryOptions(options []string, version Version) CategoryOptions {
	return parseOptions(categoryTable, options, version)
}

// PresentationOptions mirrors UNNotificationPresentationOptions.
type PresentationOptions uint

const (
	PresentationBadge PresentationOptions = 1 << iota
	PresentationSound
	PresentationAlert
	PresentationList
	PresentationBanner
)

// ParsePresentationOptions maps option names to flags. From iOS 14 "alert"
// is an alias of "banner"; earlier versions only know "alert".
func ParsePresentationOptions(options []string, version Version) PresentationOptions {
	var out PresentationOptions
	for _, name := range options {
		switch {
		case version >= 14 && (name == "banner" || name == "alert"):
			out |= PresentationBanner
		case version >= 14 && name == "list":
			out |= PresentationList
		case version < 14 && name == "alert":
			out |= PresentationAlert
		case name == "badge":
			out |= PresentationBadge
		case name == "sound":
			out |= PresentationSound
		}
	}
	return out
}
