package filename

// mimeExtensions maps declared content types to the extension a file
// of that type should carry on disk.
var mimeExtensions = map[string]string{
	"application/pdf":               ".pdf",
	"application/msword":            ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.ms-excel": ".xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       ".xlsx",
	"application/vnd.ms-powerpoint": ".ppt",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
	"application/zip":              ".zip",
	"application/x-zip-compressed": ".zip",
	"text/plain":                   ".txt",
	"text/csv":                     ".csv",
	"image/jpeg":                   ".jpg",
	"image/png":                    ".png",
	"image/gif":                    ".gif",
}

// dynamicExtensions are script and handler style suffixes that name a
// server endpoint rather than the content it serves. Only these get
// replaced when they disagree with the declared content type.
var dynamicExtensions = map[string]bool{
	".aspx": true,
	".php":  true,
	".jsp":  true,
	".cgi":  true,
	".asp":  true,
}

// reservedNames are device names that Windows refuses as filenames,
// compared case-insensitively against the extension-stripped name.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}
