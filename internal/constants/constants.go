package constants

const VERSION = "0.1.0"

const USER_AGENT = "gacharecord/" + VERSION + " (+https://github.com/Amund211/gacharecord)"
