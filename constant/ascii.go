package constant

// AsciiArtLogo is the application's ASCII art banner.
const AsciiArtLogo = `
                    __            __
   ________  ___  / /___  ____  / /____  _____
  / ___/ _ \/ _ \/ / __ \/ __ \/ __/ _ \/ ___/
 / /  /  __/  __/ / / / / /_/ / /_/  __(__  )
/_/   \___/\___/_/_/ /_/\____/\__/\___/____/
`
