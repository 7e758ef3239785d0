package version

// Values are replaced at build time with -ldflags "-X ely.by/authlib/internal/version.version=..."
var (
	version = "undefined"
	commit  = ""
)

const MajorVersion = 1

func Version() string {
	return version
}

func Commit() string {
	return commit
}
