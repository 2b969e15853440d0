package hunt

// User facing texts.
const (
	MsgWelcome = "Hi! I am the official bot for SUTD Hostel Hunt. " +
		"Collaborate in teams of 5 to collect 4 tokens of the same colour to exchange for prizes!"

	MsgRules = "These are the rules for SUTD Hostel Hunt:\n\n" +
		"1. Please note that tokens will only be hidden in safe and accessible areas " +
		"(e.g. away from ledges, parapets and electrical switch boxes) " +
		"throughout the hostel premises.\n\n" +
		"2. Only group leaders with the appropriate authentication tokens " +
		"can interact effectively with this bot.\n\n" +
		"3. All information is correct at time of print."

	MsgHelp = "These are the possible commands:\n\n" +
		"• /start to start the bot.\n" +
		"• /help to display usage help text for the bot.\n" +
		"• /register to register as a participant.\n" +
		"• /hint to ask the bot for hints.\n" +
		"• /claim <token> to attempt to claim the specified token."

	MsgAdminHelp = "These are the possible admin commands:\n\n" +
		"• /verify <hash> to verify a claim's hash."

	MsgMasterHelp = "• /broadcast <message> to send a message to every participant."

	MsgUnknownInput    = "I don't understand. Use /help to see the available commands."
	MsgUnknownCommand  = "Unknown command. Use /help to see the available commands."
	MsgGenericFailure  = "Something went wrong, please try again later."
	MsgRegisteredOnly  = "That command is only available for registered users. Please register first!"
	MsgFinishRegister  = "Please finish the current registration process first."
	MsgRegisterCancel  = "The current registration process has been cancelled."
	MsgNothingToCancel = "There is nothing to cancel."

	MsgAlreadyRegistered = "You are already registered. There is no need to register again."
	MsgEnterAuthToken    = "Please enter the authentication token that you have received from our House Guardians. " +
		"Do take note that once you have registered, you would not be able to de-register.\n\n" +
		"/cancel to cancel the current registration process."
	MsgInvalidAuthToken  = "Please enter a valid authentication token."
	MsgEnterStudentID    = "Please enter your student ID for registration."
	MsgStudentIDFormat   = "Your student ID should be exactly 7 digits."
	MsgInvalidStudentID  = "Please enter a valid student ID."
	MsgStudentIDTaken    = "Student ID already registered!"
	MsgRegisteredSuccess = "Successfully registered, %s!"

	MsgHintCooldown = "Please try again in %d seconds."
	MsgNoHints      = "There are no hints currently available. Apologies!"

	MsgClaimSuccess      = "Congratulations! You have successfully claimed the token!"
	MsgClaimReceipt      = "Please keep this message and present it to the House Guardians as proof when collecting your reward. Your verification hash is:\n\n%s"
	MsgClaimInvalidToken = "Please provide a valid token!"
	MsgClaimTaken        = "I am sorry, but that token has been claimed by someone else! Try finding another token!"
	MsgClaimTooMany      = "Please provide one token at a time!\n\nFormat of message: /claim <token>"
	MsgClaimMissing      = "Please provide the token together when sending the command!\n\nFormat of message: /claim <token>"

	MsgHashFound      = "Hash exists in database."
	MsgHashMissing    = "Hash does not exist in database."
	MsgHashTooMany    = "Please provide one hash at a time!\n\nFormat of message: /verify <hash>"
	MsgHashMissingArg = "Please enter the hash together with the command.\n\nFormat of message: /verify <hash>"

	MsgBroadcastEmpty = "Please provide the message together with the command.\n\nFormat of message: /broadcast <message>"
	MsgBroadcastDone  = "Broadcast delivered to %d of %d participants."
)
