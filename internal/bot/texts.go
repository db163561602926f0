package bot

// Reply keyboard buttons. Their text arrives back as a plain message.
const (
	btnAbout   = "About commands"
	btnStats   = "My statistics"
	btnConfirm = "Yes, start a new cycle"
	btnKeep    = "Keep previous record"
)

// Inline keyboard of the stats dates
const (
	callbackStatPrefix      = "stat_"
	callbackStatsPagePrefix = "statpage_"

	btnOlder = "« Older"
	btnNewer = "Newer »"
)

const (
	textGreeting = "Hi, %s! I will help you track your sleep. " +
		"Use /sleep, /wake, /quality, /notes and the buttons below to control me."

	textHelp = "Here is what I can do:\n" +
		"/sleep - mark the moment you go to bed\n" +
		"/wake - mark the moment you wake up\n" +
		"/quality N - rate the last night from 1 to 10\n" +
		"/notes TEXT - write down anything about the night\n" +
		"/export - get your diary as an Excel file (/export csv for CSV)\n" +
		"\"" + btnStats + "\" - look at any recorded night"

	textAlreadySleeping = "It looks like you are trying to start a new sleep cycle without finishing the previous one. " +
		"Use /wake to finish the current cycle."
	textConfirmOverwrite = "You have already started a sleep cycle today. Start a new one? (The previous one will be overwritten.)"
	textNothingPending   = "There is nothing to confirm. Use /sleep to start a sleep cycle."
	textKeptPrevious     = "Statistics for %s unchanged."
	textSleepRecorded    = "Bedtime recorded: %s"
	textRemindWake       = "%s Don't forget to tell me when you wake up: /wake"

	textNotSleeping  = "I don't see that you told me you went to sleep. Use /sleep to start a cycle."
	textWakeRecorded = "Wake-up time recorded: %s"
	textWakeSummary  = "%s Your sleep lasted about %s hours. Rate your sleep: /quality, add notes: /notes"

	textQualityNotReady = "Finish your sleep cycle first: /sleep and /wake."
	textQualityUsage    = "Enter a number from 1 to 10 after the command (for example: /quality 8)."
	textQualityLow      = "Did something bother you? Write about it in /notes."
	textQualityPerfect  = "Awesome! I hope there will be more nights like this!"
	textQualityGood     = "Great that you had a good rest!"
	textNotesHint       = "Add notes: /notes followed by your text."

	textNotesNotReady = "Record a night first: /sleep and /wake."
	textNotesUsage    = "Write your note after the command, for example: /notes woke up twice"
	textNotesSaved    = "Notes saved! Have a look at your statistics."

	textNoStats      = "Make a sleep record to see statistics."
	textChooseDate   = "Choose a date:"
	textNoDataFor    = "No data for %s."
	textStatsDetail  = "Statistics for %s:\nBedtime: %s\nWake-up: %s\nDuration: %s h\nQuality: %s\nNotes: %s"
	textNotSet       = "not set"
	textGoingToSleep = "Going to bed? Use /sleep!"

	textExportUsage = "Use /export for an Excel file or /export csv for CSV."
	textExportEmpty = "There is nothing to export yet. Start with /sleep."

	textUnknownCommand = "Unknown command. Tap \"" + btnAbout + "\" to see what I can do."
	textUnrecognised   = "I could not recognise the command. Please try again."
	textStorageFailure = "Something went wrong while saving your diary. Please try again in a moment."

	textWakeReminder    = "Still asleep? It has been a long time since /sleep. If you are up already, send /wake."
	textBedtimeReminder = "It is getting late. Going to bed? Use /sleep!"
)

var (
	nightPhrases = []string{
		"Good night!",
		"Sweet dreams!",
		"Soft pillows!",
		"Sleep tight!",
		"Have a comfortable sleep!",
	}
	morningPhrases = []string{
		"Good morning!",
		"I hope you slept well!",
		"Off to a new day!",
	}
)
