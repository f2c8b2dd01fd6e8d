package core

// Column names of the user export this tool filters. Any subset may be
// present in an upload; other columns pass through untouched.
const (
	ColFirstName      = "first_name"
	ColLastName       = "last_name"
	ColID             = "id"
	ColLastSeen       = "last_seen"
	ColSex            = "sex"
	ColFollowers      = "followers_count"
	ColCountry        = "country_title"
	ColCity           = "city_title"
	ColBirthYear      = "byear"
	ColPrivateMessage = "can_write_private_message"
	ColBirthDate      = "bdate"
)

// DateColumns are converted to dates by ParseDates.
var DateColumns = []string{ColLastSeen, ColBirthDate}

// DefaultDisplayColumns are shown when a wide table has no column choice.
var DefaultDisplayColumns = []string{ColFirstName, ColLastName, ColID, ColLastSeen, ColCountry}

// WideTableColumns is the width above which display columns are restricted.
const WideTableColumns = 10
