package protocol

// Inbound opcodes. The set is open-ended: servers may send opcodes this
// client does not know, and those must be ignored.
const (
	InAnswer             = "ANSWER"
	InAskSelectPlayer    = "ASK_SELECT_PLAYER"
	InAskStake           = "ASK_STAKE"
	InAskValidate        = "ASK_VALIDATE"
	InAvatar             = "AVATAR"
	InBanned             = "BANNED"
	InBannedList         = "BANNEDLIST"
	InButtonBlockingTime = "BUTTON_BLOCKING_TIME"
	InCancel             = "CANCEL"
	InCat                = "CAT"
	InCatCost            = "CATCOST"
	InChoice             = "CHOICE"
	InChoose             = "CHOOSE"
	InConfig             = "CONFIG"
	InConnected          = "CONNECTED"
	InDisconnected       = "DISCONNECTED"
	InEndTry             = "ENDTRY"
	InFinalRound         = "FINALROUND"
	InFinalStake         = "FINALSTAKE"
	InFinalThink         = "FINALTHINK"
	InFirst              = "FIRST"
	InFirstDelete        = "FIRSTDELETE"
	InFirstStake         = "FIRSTSTAKE"
	InGameClosed         = "GAME_CLOSED"
	InGameMetadata       = "GAMEMETADATA"
	InHint               = "HINT"
	InHostName           = "HOSTNAME"
	InInfo               = "INFO2"
	InMediaLoaded        = "MEDIALOADED"
	InOralAnswer         = "ORAL_ANSWER"
	InOut                = "OUT"
	InPass               = "PASS"
	InPause              = "PAUSE"
	InPerson             = "PERSON"
	InPersonApellated    = "PERSONAPELLATED"
	InPersonFinalAnswer  = "PERSONFINALANSWER"
	InPersonFinalStake   = "PERSONFINALSTAKE"
	InPersonStake        = "PERSONSTAKE"
	InPlayerAnswer       = "PLAYER_ANSWER"
	InPlayerAppellating  = "PLAYER_APPELLATING"
	InPlayerScoreChanged = "PLAYER_SCORE_CHANGED"
	InPlayerState        = "PLAYER_STATE"
	InQType              = "QTYPE"
	InQuestion           = "QUESTION"
	InQuestionEnd        = "QUESTION_END"
	InReadingSpeed       = "READINGSPEED"
	InReady              = "READY"
	InReplic             = "REPLIC"
	InReport             = "REPORT"
	InRightAnswer        = "RIGHTANSWER"
	InRoundsNames        = "ROUNDSNAMES"
	InRoundThemes        = "ROUND_THEMES2"
	InSetChooser         = "SETCHOOSER"
	InSetJoinMode        = "SETJOINMODE"
	InShowTable          = "SHOWTABLO"
	InStage              = "STAGE"
	InStageInfo          = "STAGE_INFO"
	InStake              = "STAKE2"
	InStop               = "STOP"
	InSums               = "SUMS"
	InTable              = "TABLO2"
	InTheme              = "THEME"
	InTimeout            = "TIMEOUT"
	InTimer              = "TIMER"
	InToggle             = "TOGGLE"
	InTry                = "TRY"
	InUnbanned           = "UNBANNED"
	InValidation         = "VALIDATION"
	InValidation2        = "VALIDATION2"
	InWinner             = "WINNER"
	InWrongTry           = "WRONGTRY"
)

// CONFIG sub-commands.
const (
	ConfigAddTable    = "ADDTABLE"
	ConfigChangeType  = "CHANGETYPE"
	ConfigDeleteTable = "DELETETABLE"
	ConfigFree        = "FREE"
	ConfigSet         = "SET"
)

// Timer sub-commands.
const (
	TimerGo         = "GO"
	TimerStop       = "STOP"
	TimerPause      = "PAUSE"
	TimerResume     = "RESUME"
	TimerUserPause  = "USER_PAUSE"
	TimerUserResume = "USER_RESUME"
	TimerMaxTime    = "MAXTIME"
)

// Outbound opcodes.
const (
	OutAnswer        = "ANSWER"
	OutAnswerVersion = "ANSWER_VERSION"
	OutApellate      = "APELLATE"
	OutAtom          = "ATOM"
	OutCat           = "CAT"
	OutCatCost       = "CATCOST"
	OutChange        = "CHANGE"
	OutChoice        = "CHOICE"
	OutConfig        = "CONFIG"
	OutDelete        = "DELETE"
	OutFinalStake    = "FINALSTAKE"
	OutFirst         = "FIRST"
	OutInfo          = "INFO"
	OutIsRight       = "ISRIGHT"
	OutMark          = "MARK"
	OutMediaLoaded   = "MEDIALOADED"
	OutMove          = "MOVE"
	OutNext          = "NEXT"
	OutNextDelete    = "NEXTDELETE"
	OutPass          = "PASS"
	OutPicture       = "PICTURE"
	OutPressButton   = "I"
	OutReady         = "READY"
	OutReport        = "REPORT"
	OutSelectPlayer  = "SELECT_PLAYER"
	OutSetChooser    = "SETCHOOSER"
	OutSetStake      = "SET_STAKE"
	OutStake         = "STAKE"
	OutToggle        = "TOGGLE"
	OutValidate      = "VALIDATE"
)
