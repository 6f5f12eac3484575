package configsdk

// Version is reported in the User-Agent header of every request.
const Version = "0.3.0"
